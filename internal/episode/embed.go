package episode

import "fmt"

// embedAllow is the feature-policy list carried on every player embed.
const embedAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"

// EmbedMarkup renders the player iframe for a catalog video. The attribute
// set is fixed; downstream pages depend on it verbatim.
func EmbedMarkup(videoID string) string {
	return fmt.Sprintf(
		"<iframe width='560' height='315' src='https://www.youtube.com/embed/%s' frameborder='0' allow='%s' allowfullscreen></iframe>",
		videoID, embedAllow)
}

// LiveStreamMarkup renders the channel live-stream iframe used as a
// placeholder before the recorded video exists.
func LiveStreamMarkup(channelID string) string {
	return fmt.Sprintf(
		"<iframe width='560' height='315' src='https://www.youtube.com/embed/live_stream?autoplay=1&channel=%s&playsinline=1' frameborder='0' allow='%s' allowfullscreen></iframe>",
		channelID, embedAllow)
}

// WatchURL returns the public watch page for a catalog video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
