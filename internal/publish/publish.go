// Package publish uploads a rendered video to YouTube with the channel's
// fixed, kid-safe metadata.
package publish

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/services/youtube"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// TokenEnv names the variable holding the authorized-user token JSON
const TokenEnv = "YOUTUBE_TOKEN"

const (
	// CategoryEducation is YouTube's Education category
	CategoryEducation = "27"
	// PrivacyPublic makes the video visible right away
	PrivacyPublic = "public"
	// Description is attached to every upload
	Description = "¡Aprende algo nuevo cada día con PequeBum Kids! 🌈✨\n#niños #educación #curiosidades"
)

// Tags are attached to every upload
var Tags = []string{"niños", "pequebum", "educación", "datos curiosos"}

// Request is the metadata sent with an upload
type Request struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	CategoryID    string   `json:"categoryId"`
	PrivacyStatus string   `json:"privacyStatus"`
	MadeForKids   bool     `json:"madeForKids"`
}

// NewRequest builds the metadata for title. Everything but the title is fixed;
// in particular the video is always declared made for kids.
func NewRequest(title string) Request {
	return Request{
		Title:         title,
		Description:   Description,
		Tags:          append([]string(nil), Tags...),
		CategoryID:    CategoryEducation,
		PrivacyStatus: PrivacyPublic,
		MadeForKids:   true,
	}
}

// Result identifies a published video
type Result struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WatchURL is the short link for a video ID
func WatchURL(id string) string {
	return "https://youtu.be/" + id
}

// Options tunes the upload transport
type Options struct {
	ChunkSize         int
	Timeout           time.Duration
	NotifySubscribers bool
}

// Publisher uploads through a YouTubeService
type Publisher struct {
	youtubeService youtube.YouTubeService
	opts           Options
}

// New returns a publisher using service
func New(service youtube.YouTubeService, opts Options) *Publisher {
	return &Publisher{youtubeService: service, opts: opts}
}

// Publish uploads filePath under title. A missing or unusable token fails with
// failure.KindCredential before any upload; upload problems fail with
// failure.KindPublish and are not retried.
func (p *Publisher) Publish(ctx context.Context, filePath, title string) (Result, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnv))
	if token == "" {
		return Result{}, failure.New(failure.KindCredential, TokenEnv+" is not set")
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	service, err := p.youtubeService.InitializeYouTubeService(ctx, []byte(token))
	if err != nil {
		return Result{}, failure.Wrap(failure.KindCredential, err, "cannot authorize with %s", TokenEnv)
	}

	req := NewRequest(title)
	utils.LogVerbose("Uploading %s as %q", filePath, req.Title)

	id, err := p.youtubeService.UploadVideo(ctx, service, youtube.VideoUpload{
		FilePath:          filePath,
		Title:             req.Title,
		Description:       req.Description,
		Tags:              req.Tags,
		CategoryID:        req.CategoryID,
		PrivacyStatus:     req.PrivacyStatus,
		MadeForKids:       req.MadeForKids,
		NotifySubscribers: p.opts.NotifySubscribers,
		ChunkSize:         p.opts.ChunkSize,
	})
	if err != nil {
		return Result{}, failure.Wrap(failure.KindPublish, err, "upload failed")
	}
	if id == "" {
		return Result{}, failure.New(failure.KindPublish, "upload returned no video ID")
	}

	return Result{ID: id, URL: WatchURL(id)}, nil
}
