package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"taskfollowup/internal/config"
)

// S3Uploader is the part of the s3 upload manager the store uses
type S3Uploader interface {
	Upload(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store keeps exports in an S3 bucket
type S3Store struct {
	uploader S3Uploader
	bucket   string
	prefix   string
}

// NewS3Store loads the default AWS credential chain for cfg.S3Region
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3ForcePathStyle
	})

	return NewS3StoreWithUploader(manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix), nil
}

func NewS3StoreWithUploader(u S3Uploader, bucket, prefix string) *S3Store {
	return &S3Store{uploader: u, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Upload implements ObjectStore
func (s *S3Store) Upload(ctx context.Context, name string, data []byte) (UploadResult, error) {
	if name == "" {
		return UploadResult{}, fmt.Errorf("name cannot be empty")
	}

	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}
	return UploadResult{Name: name, Location: out.Location}, nil
}
