// Package archive keeps a copy of each render in S3 before it is removed locally.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// Archiver uploads renders to one bucket under a key prefix
type Archiver struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// New builds an archiver from the default AWS credential chain
func New(ctx context.Context, bucket, prefix, region string) (*Archiver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewWithClient wraps an existing S3 client
func NewWithClient(client PutObjectAPI, bucket, prefix string) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Key is the object key for a run's render
func (a *Archiver) Key(runID string) string {
	return path.Join(a.prefix, a.now().UTC().Format("2006-01-02"), runID+".mp4")
}

// Store uploads the file at localPath and returns its s3:// URI. metadata is
// attached as user-defined object metadata.
func (a *Archiver) Store(ctx context.Context, localPath, runID string, metadata map[string]string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open render: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			utils.LogWarning("Failed to close render: %v", err)
		}
	}()

	key := a.Key(runID)
	utils.Logger().Debug().
		Str("bucket", a.bucket).
		Str("key", key).
		Msg("Archiving render to S3")

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("video/mp4"),
		Metadata:    asciiMetadata(metadata),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload render to S3: %w", err)
	}

	uri := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	utils.LogVerbose("Render archived to %s", uri)
	return uri, nil
}

// asciiMetadata drops values S3 cannot carry in headers
func asciiMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if isASCII(v) {
			out[k] = v
		}
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
