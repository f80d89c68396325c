// Package match selects the catalog video that belongs to a broadcast
// service, either by searching the days around a past service date or by
// polling for an active live stream.
package match
