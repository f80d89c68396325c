// Package schedule owns the weekly service cadence: enumerating expected
// service dates over a window and deriving the title and timestamp strings
// the publishing platform keys on.
package schedule
