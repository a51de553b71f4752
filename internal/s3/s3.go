// Package s3 uploads finished archives to S3-compatible object storage.
package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/uberpack/uberpack/internal/config"
)

// ObjectStorage stores a single built archive.
type ObjectStorage interface {
	Upload(ctx context.Context, body io.Reader) error
	Download(ctx context.Context) (io.ReadCloser, error)
}

// New constructs object storage from configuration.
func New(ctx context.Context, cfg config.ObjectStorage) (ObjectStorage, error) {
	if cfg.AmazonS3 == nil {
		return nil, fmt.Errorf("object storage configured without a backend")
	}
	return newAmazonS3(ctx, cfg.AmazonS3)
}

// AmazonS3 implements ObjectStorage against the AWS S3 API. A custom URL
// switches the client to path-style addressing for S3-compatible services.
type AmazonS3 struct {
	client *s3.Client
	bucket string
	key    string
}

func newAmazonS3(ctx context.Context, cfg *config.AmazonS3) (*AmazonS3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.URL != "" {
			o.BaseEndpoint = aws.String(cfg.URL)
			o.UsePathStyle = true
		}
	})

	return &AmazonS3{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

func (s *AmazonS3) Upload(ctx context.Context, body io.Reader) error {
	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("upload to s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *AmazonS3) Download(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("download s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return out.Body, nil
}
