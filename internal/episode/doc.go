// Package episode resolves service dates to publishing episode records and
// pushes matched catalog videos into them.
package episode
