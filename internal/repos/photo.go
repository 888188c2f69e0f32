package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/types"
)

type PhotoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, photos []*types.Photo) ([]*types.Photo, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Photo, error)
	ListByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) ([]*types.Photo, error)
	CountByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) (int64, error)
	UpdateCaption(ctx context.Context, tx *gorm.DB, photoID uuid.UUID, caption string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type photoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhotoRepo(db *gorm.DB, baseLog *logger.Logger) PhotoRepo {
	return &photoRepo{db: db, log: baseLog.With("repo", "PhotoRepo")}
}

func (pr *photoRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return pr.db
}

func (pr *photoRepo) Create(ctx context.Context, tx *gorm.DB, photos []*types.Photo) ([]*types.Photo, error) {
	if len(photos) == 0 {
		return []*types.Photo{}, nil
	}
	if err := pr.conn(tx).WithContext(ctx).Create(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

func (pr *photoRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Photo, error) {
	var results []*types.Photo
	if len(ids) == 0 {
		return results, nil
	}
	if err := pr.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *photoRepo) ListByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) ([]*types.Photo, error) {
	var results []*types.Photo
	if err := pr.conn(tx).WithContext(ctx).
		Where("logbook_id = ?", logbookID).
		Order("position ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *photoRepo) CountByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) (int64, error) {
	var count int64
	if err := pr.conn(tx).WithContext(ctx).
		Model(&types.Photo{}).
		Where("logbook_id = ?", logbookID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *photoRepo) UpdateCaption(ctx context.Context, tx *gorm.DB, photoID uuid.UUID, caption string) error {
	return pr.conn(tx).WithContext(ctx).
		Model(&types.Photo{}).
		Where("id = ?", photoID).
		Update("caption", caption).Error
}

func (pr *photoRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return pr.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Photo{}).Error
}
