package domain

import "regexp"

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// EmbedURL turns a YouTube watch/share link into an embeddable player URL.
// It returns "" when the link carries no 11 character video id.
func EmbedURL(mediaLink string) string {
	m := youtubeIDPattern.FindStringSubmatch(mediaLink)
	if len(m) < 3 || len(m[2]) != 11 {
		return ""
	}
	return "https://www.youtube.com/embed/" + m[2] + "?rel=0&modestbranding=1&enablejsapi=1"
}
