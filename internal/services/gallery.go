package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/clients/gcp"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/repos"
	"github.com/hearthside/logbook-backend/internal/requestdata"
	"github.com/hearthside/logbook-backend/internal/types"
)

type GalleryService interface {
	UploadPhoto(ctx context.Context, slug string, file io.Reader, contentType, caption string) (*types.Photo, error)
	ListPhotos(ctx context.Context, slug string) ([]*types.Photo, error)
	UpdateCaption(ctx context.Context, photoID uuid.UUID, caption string) (*types.Photo, error)
	DeletePhoto(ctx context.Context, photoID uuid.UUID) error
}

type galleryService struct {
	db             *gorm.DB
	log            *logger.Logger
	logbookRepo    repos.LogbookRepo
	membershipRepo repos.MembershipRepo
	photoRepo      repos.PhotoRepo
	bucketService  gcp.BucketService
}

func NewGalleryService(
	db *gorm.DB,
	log *logger.Logger,
	logbookRepo repos.LogbookRepo,
	membershipRepo repos.MembershipRepo,
	photoRepo repos.PhotoRepo,
	bucketService gcp.BucketService,
) GalleryService {
	return &galleryService{
		db:             db,
		log:            log.With("service", "GalleryService"),
		logbookRepo:    logbookRepo,
		membershipRepo: membershipRepo,
		photoRepo:      photoRepo,
		bucketService:  bucketService,
	}
}

func (gs *galleryService) UploadPhoto(ctx context.Context, slug string, file io.Reader, contentType, caption string) (*types.Photo, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apierr.Validation("Only image uploads are accepted")
	}

	// Any member may add to the gallery.
	logbook, membership, err := gs.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, apierr.NotFound(msgLogbookNotFound)
	}

	photoID := uuid.New()
	key := fmt.Sprintf("photos/%s/%s", logbook.ID, photoID)
	if err := gs.bucketService.UploadFile(ctx, gcp.BucketCategoryPhoto, key, file, contentType); err != nil {
		return nil, apierr.Internal(fmt.Errorf("upload photo: %w", err))
	}

	photo := &types.Photo{
		ID:         photoID,
		LogbookID:  logbook.ID,
		UploadedBy: rd.UserID,
		BucketKey:  key,
		URL:        gs.bucketService.PublicURL(gcp.BucketCategoryPhoto, key),
		Caption:    strings.TrimSpace(caption),
	}
	if _, err := gs.photoRepo.Create(ctx, nil, []*types.Photo{photo}); err != nil {
		// Best effort cleanup; an orphaned object is better than a
		// phantom row.
		if delErr := gs.bucketService.DeleteFile(ctx, gcp.BucketCategoryPhoto, key); delErr != nil {
			gs.log.Warn("Failed to clean up orphaned photo object", "key", key, "error", delErr)
		}
		return nil, apierr.Persistence(fmt.Errorf("create photo row: %w", err))
	}
	return photo, nil
}

func (gs *galleryService) ListPhotos(ctx context.Context, slug string) ([]*types.Photo, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	logbook, membership, err := gs.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, apierr.NotFound(msgLogbookNotFound)
	}
	photos, err := gs.photoRepo.ListByLogbook(ctx, nil, logbook.ID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list photos: %w", err))
	}
	return photos, nil
}

// resolvePhoto loads a photo and the caller's membership in its
// logbook. Missing photo and no membership read the same to callers.
func (gs *galleryService) resolvePhoto(ctx context.Context, photoID uuid.UUID) (*types.Photo, *types.Membership, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, nil, apierr.Unauthenticated("Not signed in")
	}
	photos, err := gs.photoRepo.GetByIDs(ctx, nil, []uuid.UUID{photoID})
	if err != nil {
		return nil, nil, apierr.Persistence(fmt.Errorf("fetch photo: %w", err))
	}
	if len(photos) == 0 {
		return nil, nil, apierr.NotFound("Photo not found or access denied")
	}
	photo := photos[0]
	membership, err := gs.membershipRepo.GetByLogbookAndUser(ctx, nil, photo.LogbookID, rd.UserID)
	if err != nil {
		return nil, nil, apierr.Persistence(fmt.Errorf("check membership: %w", err))
	}
	if membership == nil {
		return nil, nil, apierr.NotFound("Photo not found or access denied")
	}
	return photo, membership, nil
}

func (gs *galleryService) UpdateCaption(ctx context.Context, photoID uuid.UUID, caption string) (*types.Photo, error) {
	photo, membership, err := gs.resolvePhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	rd := requestdata.GetRequestData(ctx)
	if membership.Role != types.RoleParent && photo.UploadedBy != rd.UserID {
		return nil, apierr.Forbidden("Only parents or the uploader can edit a photo")
	}
	caption = strings.TrimSpace(caption)
	if err := gs.photoRepo.UpdateCaption(ctx, nil, photo.ID, caption); err != nil {
		return nil, apierr.Persistence(fmt.Errorf("update caption: %w", err))
	}
	photo.Caption = caption
	return photo, nil
}

func (gs *galleryService) DeletePhoto(ctx context.Context, photoID uuid.UUID) error {
	photo, membership, err := gs.resolvePhoto(ctx, photoID)
	if err != nil {
		return err
	}
	rd := requestdata.GetRequestData(ctx)
	if membership.Role != types.RoleParent && photo.UploadedBy != rd.UserID {
		return apierr.Forbidden("Only parents or the uploader can delete a photo")
	}
	if err := gs.photoRepo.DeleteByIDs(ctx, nil, []uuid.UUID{photo.ID}); err != nil {
		return apierr.Persistence(fmt.Errorf("delete photo row: %w", err))
	}
	if err := gs.bucketService.DeleteFile(ctx, gcp.BucketCategoryPhoto, photo.BucketKey); err != nil {
		gs.log.Warn("Failed to delete photo object", "key", photo.BucketKey, "error", err)
	}
	return nil
}
