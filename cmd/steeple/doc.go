// Command steeple keeps weekly broadcast episode records on the publishing
// platform in sync with the channel's video catalog. It backfills historical
// service dates, reconciles the current week around a live broadcast, and
// records every run for later inspection.
package main
