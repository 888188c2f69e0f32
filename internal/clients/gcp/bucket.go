package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/hearthside/logbook-backend/internal/logger"
)

type BucketCategory string

const (
	BucketCategoryAvatar BucketCategory = "avatar"
	BucketCategoryPhoto  BucketCategory = "photo"
)

// BucketService is the object-store collaborator: upload bytes, get a
// public URL back. Content editing patches that URL into the page
// document; the service itself knows nothing about page sections.
type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader, contentType string) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	PublicURL(category BucketCategory, key string) string
}

type bucketConfig struct {
	name      string
	cdnDomain string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	avatarBucket  bucketConfig
	photoBucket   bucketConfig
}

func NewBucketService(ctx context.Context, log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	avatarBucketName := strings.TrimSpace(os.Getenv("AVATAR_GCS_BUCKET_NAME"))
	photoBucketName := strings.TrimSpace(os.Getenv("PHOTO_GCS_BUCKET_NAME"))
	if avatarBucketName == "" {
		return nil, fmt.Errorf("missing env var AVATAR_GCS_BUCKET_NAME")
	}
	if photoBucketName == "" {
		return nil, fmt.Errorf("missing env var PHOTO_GCS_BUCKET_NAME")
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); creds == "" {
		// Emulator / local development path.
		if host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")); host != "" {
			opts = append(opts, option.WithoutAuthentication())
		}
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}

	return &bucketService{
		log:           serviceLog,
		storageClient: client,
		avatarBucket: bucketConfig{
			name:      avatarBucketName,
			cdnDomain: strings.TrimSpace(os.Getenv("AVATAR_CDN_DOMAIN")),
		},
		photoBucket: bucketConfig{
			name:      photoBucketName,
			cdnDomain: strings.TrimSpace(os.Getenv("PHOTO_CDN_DOMAIN")),
		},
	}, nil
}

func (bs *bucketService) bucketFor(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryAvatar:
		return bs.avatarBucket, nil
	case BucketCategoryPhoto:
		return bs.photoBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category %q", category)
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader, contentType string) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s/%s: %w", cfg.name, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s/%s: %w", cfg.name, key, err)
	}
	bs.log.Debug("Uploaded object", "bucket", cfg.name, "key", key)
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", cfg.name, key, err)
	}
	return nil
}

func (bs *bucketService) PublicURL(category BucketCategory, key string) string {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return ""
	}
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}
