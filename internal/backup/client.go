// Package backup uploads snapshot blobs to an S3-compatible bucket
// (Cloudflare R2 style account endpoint).
package backup

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Uploader is the subset of the backup client the snapshot job needs.
// Satisfied by *Client; tests supply a fake.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// Client wraps an S3 client pointed at an R2-compatible endpoint
type Client struct {
	s3     *s3.Client
	bucket string
	log    zerolog.Logger
}

// NewClient creates a backup client for the given account and bucket.
// accountID may be empty for plain S3 endpoints.
func NewClient(ctx context.Context, accountID, accessKeyID, secretAccessKey, bucket string, log zerolog.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup credentials: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if accountID != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
		}
	})

	return &Client{
		s3:     client,
		bucket: bucket,
		log:    log.With().Str("client", "backup").Logger(),
	}, nil
}

// Upload writes a blob under the given key, replacing any previous object
func (c *Client) Upload(ctx context.Context, key string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	c.log.Info().
		Str("key", key).
		Int("size_bytes", len(data)).
		Msg("Backup uploaded")
	return nil
}
