package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/types"
)

// ErrVersionConflict is returned when a content write loses the
// optimistic-version check: some other writer persisted between this
// writer's read and its write.
var ErrVersionConflict = errors.New("logbook content version conflict")

type LogbookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logbook *types.Logbook) (*types.Logbook, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Logbook, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Logbook, error)
	// GetBySlugForUser resolves slug and the caller's membership in one
	// round trip. Both a missing slug and a non-member caller return
	// (nil, nil, nil): the two cases are indistinguishable on purpose.
	GetBySlugForUser(ctx context.Context, tx *gorm.DB, slug string, userID uuid.UUID) (*types.Logbook, *types.Membership, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Logbook, error)
	// UpdatePageSections writes the override document guarded by the
	// content version; returns ErrVersionConflict on a lost race.
	UpdatePageSections(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID, sections datatypes.JSON, expectedVersion int64) error
}

type logbookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLogbookRepo(db *gorm.DB, baseLog *logger.Logger) LogbookRepo {
	return &logbookRepo{db: db, log: baseLog.With("repo", "LogbookRepo")}
}

func (lr *logbookRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return lr.db
}

func (lr *logbookRepo) Create(ctx context.Context, tx *gorm.DB, logbook *types.Logbook) (*types.Logbook, error) {
	if err := lr.conn(tx).WithContext(ctx).Create(logbook).Error; err != nil {
		return nil, err
	}
	return logbook, nil
}

func (lr *logbookRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Logbook, error) {
	var results []*types.Logbook
	if len(ids) == 0 {
		return results, nil
	}
	if err := lr.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *logbookRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Logbook, error) {
	var result types.Logbook
	err := lr.conn(tx).WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (lr *logbookRepo) GetBySlugForUser(ctx context.Context, tx *gorm.DB, slug string, userID uuid.UUID) (*types.Logbook, *types.Membership, error) {
	logbook, err := lr.GetBySlug(ctx, tx, slug)
	if err != nil {
		return nil, nil, err
	}
	if logbook == nil {
		return nil, nil, nil
	}
	var membership types.Membership
	err = lr.conn(tx).WithContext(ctx).
		Where("logbook_id = ? AND user_id = ?", logbook.ID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return logbook, &membership, nil
}

func (lr *logbookRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Logbook, error) {
	var results []*types.Logbook
	if err := lr.conn(tx).WithContext(ctx).
		Joins(`JOIN membership ON membership.logbook_id = logbook.id`).
		Where("membership.user_id = ?", userID).
		Order("logbook.created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *logbookRepo) UpdatePageSections(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID, sections datatypes.JSON, expectedVersion int64) error {
	result := lr.conn(tx).WithContext(ctx).
		Model(&types.Logbook{}).
		Where("id = ? AND content_version = ?", logbookID, expectedVersion).
		Updates(map[string]any{
			"page_sections":   sections,
			"content_version": expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
