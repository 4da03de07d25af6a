package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"taskfollowup/internal/config"
)

// UploadResult names the object as the store saved it
type UploadResult struct {
	Name     string
	Location string
}

// ObjectStore uploads export files
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte) (UploadResult, error)
}

// NewObjectStore builds the store selected by cfg.Driver
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "cloudinary":
		return NewCloudinaryStore(cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStore keeps exports as raw Cloudinary resources
type CloudinaryStore struct {
	upload cloudinaryUploader
	folder string
}

func NewCloudinaryStore(cfg config.StorageConfig) (*CloudinaryStore, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryStore{upload: &cld.Upload, folder: cfg.CloudinaryFolder}, nil
}

// Upload implements ObjectStore
func (s *CloudinaryStore) Upload(ctx context.Context, name string, data []byte) (UploadResult, error) {
	if name == "" {
		return UploadResult{}, fmt.Errorf("name cannot be empty")
	}

	params := uploader.UploadParams{
		PublicID:     name,
		Folder:       s.folder,
		Overwrite:    &[]bool{true}[0],
		ResourceType: "raw",
	}

	result, err := s.upload.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("failed to upload file: %s", result.Error.Message)
	}

	uploaded := name
	if result.PublicID != "" {
		uploaded = path.Base(strings.TrimSuffix(result.PublicID, "/"))
	}
	return UploadResult{Name: uploaded, Location: result.SecureURL}, nil
}
