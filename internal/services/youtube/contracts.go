package youtube

import (
	"context"

	"google.golang.org/api/youtube/v3"
)

// YouTubeService defines the interface for YouTube service operations
type YouTubeService interface {
	// InitializeYouTubeService creates a YouTube service client from an
	// authorized-user token blob
	InitializeYouTubeService(ctx context.Context, tokenJSON []byte) (*youtube.Service, error)

	// UploadVideo uploads one video and returns the ID YouTube assigned to it
	UploadVideo(ctx context.Context, service *youtube.Service, upload VideoUpload) (string, error)
}

// VideoUpload represents the information needed to upload a video
type VideoUpload struct {
	FilePath          string   // Local path of the rendered MP4
	Title             string   // Video title
	Description       string   // Video description
	Tags              []string // Video tags
	CategoryID        string   // YouTube category, 27 is Education
	PrivacyStatus     string   // public, unlisted or private
	MadeForKids       bool     // Self-declared audience flag
	NotifySubscribers bool     // Whether subscribers get a notification
	ChunkSize         int      // Resumable upload chunk size in bytes, 0 for the library default
}
