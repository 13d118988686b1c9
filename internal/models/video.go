package models

import "regexp"

var (
	youtubeRe = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	vimeoRe   = regexp.MustCompile(`vimeo\.com/(\d+)`)
)

// VideoInfo is the result of classifying a URL against known video hosts.
type VideoInfo struct {
	IsVideo  bool
	Provider VideoProvider
	ID       string
}

// ClassifyVideo pattern-matches rawURL against YouTube and Vimeo URL shapes.
func ClassifyVideo(rawURL string) VideoInfo {
	if m := youtubeRe.FindStringSubmatch(rawURL); m != nil {
		return VideoInfo{IsVideo: true, Provider: VideoYouTube, ID: m[1]}
	}
	if m := vimeoRe.FindStringSubmatch(rawURL); m != nil {
		return VideoInfo{IsVideo: true, Provider: VideoVimeo, ID: m[1]}
	}
	return VideoInfo{}
}

// EmbedURL returns the player URL for a classified video, or "" for other links.
func (v VideoInfo) EmbedURL() string {
	switch v.Provider {
	case VideoYouTube:
		return "https://www.youtube.com/embed/" + v.ID
	case VideoVimeo:
		return "https://player.vimeo.com/video/" + v.ID
	}
	return ""
}
