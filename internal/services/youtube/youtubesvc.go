package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gnzdotmx/pequebum/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Required OAuth scopes for YouTube API
var requiredScopes = []string{
	youtube.YoutubeUploadScope,
}

// ErrInvalidToken is returned for token blobs that cannot authorize a request
var ErrInvalidToken = errors.New("invalid YouTube token")

// authorizedUser is the token format written by Google's OAuth client libraries
type authorizedUser struct {
	Token        string   `json:"token"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry"`
}

// Service implements the YouTubeService interface
type Service struct{}

// NewService returns the YouTube Data API implementation
func NewService() *Service {
	return &Service{}
}

// InitializeYouTubeService creates a YouTube service client. The access token
// is refreshed up front so a rejected credential surfaces here rather than
// halfway through an upload.
func (m *Service) InitializeYouTubeService(ctx context.Context, tokenJSON []byte) (*youtube.Service, error) {
	ts, err := TokenSource(ctx, tokenJSON)
	if err != nil {
		return nil, err
	}

	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %v", ErrInvalidToken, err)
	}

	service, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return service, nil
}

// TokenSource builds a refreshing token source from an authorized-user blob
func TokenSource(ctx context.Context, tokenJSON []byte) (oauth2.TokenSource, error) {
	var au authorizedUser
	if err := json.Unmarshal(tokenJSON, &au); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidToken, err)
	}

	access := au.Token
	if access == "" {
		access = au.AccessToken
	}
	if access == "" && au.RefreshToken == "" {
		return nil, fmt.Errorf("%w: neither an access token nor a refresh token is present", ErrInvalidToken)
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: au.RefreshToken,
		TokenType:    "Bearer",
	}
	if au.Expiry != "" {
		expiry, err := time.Parse(time.RFC3339Nano, au.Expiry)
		if err != nil {
			return nil, fmt.Errorf("%w: bad expiry %q: %v", ErrInvalidToken, au.Expiry, err)
		}
		tok.Expiry = expiry
	} else if au.RefreshToken != "" {
		// Unknown expiry: force a refresh on first use.
		tok.Expiry = time.Now().Add(-time.Minute)
	}

	if au.RefreshToken == "" {
		if !tok.Expiry.IsZero() && tok.Expiry.Before(time.Now()) {
			return nil, fmt.Errorf("%w: access token expired at %s and there is no refresh token", ErrInvalidToken, au.Expiry)
		}
		utils.LogVerbose("YouTube token has no refresh token, using it as is")
		return oauth2.StaticTokenSource(tok), nil
	}
	if au.ClientID == "" || au.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required to refresh", ErrInvalidToken)
	}

	scopes := au.Scopes
	if len(scopes) == 0 {
		scopes = requiredScopes
	}
	endpoint := google.Endpoint
	if au.TokenURI != "" {
		endpoint.TokenURL = au.TokenURI
	}

	config := &oauth2.Config{
		ClientID:     au.ClientID,
		ClientSecret: au.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
	return config.TokenSource(ctx, tok), nil
}

// UploadVideo uploads a video with a resumable, chunked transfer
func (m *Service) UploadVideo(ctx context.Context, service *youtube.Service, upload VideoUpload) (string, error) {
	file, err := os.Open(upload.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			utils.LogWarning("Failed to close video file: %v", err)
		}
	}()

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       upload.Title,
			Description: upload.Description,
			CategoryId:  upload.CategoryID,
			Tags:        upload.Tags,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           upload.PrivacyStatus,
			SelfDeclaredMadeForKids: upload.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	mediaOpts := []googleapi.MediaOption{googleapi.ContentType("video/mp4")}
	if upload.ChunkSize > 0 {
		mediaOpts = append(mediaOpts, googleapi.ChunkSize(upload.ChunkSize))
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(upload.NotifySubscribers)
	call.Media(file, mediaOpts...)
	call.ProgressUpdater(progressLogger(size))

	response, err := call.Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", describeAPIError(err))
	}

	utils.LogVerbose("Successfully uploaded video: %s", response.Id)
	return response.Id, nil
}

// progressLogger reports upload progress in 25% steps
func progressLogger(size int64) googleapi.ProgressUpdater {
	next := int64(25)
	return func(current, total int64) {
		if total <= 0 {
			total = size
		}
		if total <= 0 {
			utils.LogDebug("Uploaded %d bytes", current)
			return
		}
		pct := current * 100 / total
		for pct >= next && next <= 100 {
			utils.LogVerbose("⬆️ Upload: %d%%", next)
			next += 25
		}
	}
}

func describeAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case 401, 403:
		return fmt.Errorf("upload not authorized (code %d): %w", apiErr.Code, err)
	case 400:
		return fmt.Errorf("upload request rejected (code %d): %w", apiErr.Code, err)
	default:
		return fmt.Errorf("YouTube API error (code %d): %w", apiErr.Code, err)
	}
}
