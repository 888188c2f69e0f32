package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/types"
)

type MembershipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, memberships []*types.Membership) ([]*types.Membership, error)
	GetByLogbookAndUser(ctx context.Context, tx *gorm.DB, logbookID, userID uuid.UUID) (*types.Membership, error)
	ListByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) ([]*types.Membership, error)
	CountByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) (int64, error)
}

type membershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return &membershipRepo{db: db, log: baseLog.With("repo", "MembershipRepo")}
}

func (mr *membershipRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return mr.db
}

func (mr *membershipRepo) Create(ctx context.Context, tx *gorm.DB, memberships []*types.Membership) ([]*types.Membership, error) {
	if len(memberships) == 0 {
		return []*types.Membership{}, nil
	}
	if err := mr.conn(tx).WithContext(ctx).Create(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (mr *membershipRepo) GetByLogbookAndUser(ctx context.Context, tx *gorm.DB, logbookID, userID uuid.UUID) (*types.Membership, error) {
	var result types.Membership
	err := mr.conn(tx).WithContext(ctx).
		Where("logbook_id = ? AND user_id = ?", logbookID, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *membershipRepo) ListByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) ([]*types.Membership, error) {
	var results []*types.Membership
	if err := mr.conn(tx).WithContext(ctx).
		Where("logbook_id = ?", logbookID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *membershipRepo) CountByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) (int64, error) {
	var count int64
	if err := mr.conn(tx).WithContext(ctx).
		Model(&types.Membership{}).
		Where("logbook_id = ?", logbookID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
