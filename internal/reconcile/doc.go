// Package reconcile orchestrates the backfill and live flows that keep
// publishing episode records in sync with the channel's video catalog.
package reconcile
