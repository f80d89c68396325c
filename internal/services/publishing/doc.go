// Package publishing implements the publishing platform API client: episode
// search by title, episode creation, and the episode/episode-time PATCH
// operations the reconciliation workflow drives. Every call authenticates
// with the configured application credential pair over basic auth.
package publishing
