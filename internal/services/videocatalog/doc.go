// Package videocatalog implements the read-only video catalog API client used
// for video discovery: windowed channel search, live-broadcast search, the
// most-recent-upload fallback, and description fetches. The catalog is never
// mutated by this system.
package videocatalog
