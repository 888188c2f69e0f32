package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/types"
)

type InviteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, invite *types.Invite) (*types.Invite, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Invite, error)
	ListByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) ([]*types.Invite, error)
	MarkRedeemed(ctx context.Context, tx *gorm.DB, inviteID, userID uuid.UUID, at time.Time) error
}

type inviteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInviteRepo(db *gorm.DB, baseLog *logger.Logger) InviteRepo {
	return &inviteRepo{db: db, log: baseLog.With("repo", "InviteRepo")}
}

func (ir *inviteRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ir.db
}

func (ir *inviteRepo) Create(ctx context.Context, tx *gorm.DB, invite *types.Invite) (*types.Invite, error) {
	if err := ir.conn(tx).WithContext(ctx).Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

func (ir *inviteRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Invite, error) {
	var result types.Invite
	err := ir.conn(tx).WithContext(ctx).
		Where("code = ?", code).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ir *inviteRepo) ListByLogbook(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID) ([]*types.Invite, error) {
	var results []*types.Invite
	if err := ir.conn(tx).WithContext(ctx).
		Where("logbook_id = ?", logbookID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *inviteRepo) MarkRedeemed(ctx context.Context, tx *gorm.DB, inviteID, userID uuid.UUID, at time.Time) error {
	return ir.conn(tx).WithContext(ctx).
		Model(&types.Invite{}).
		Where("id = ?", inviteID).
		Updates(map[string]any{
			"use_count":   gorm.Expr("use_count + 1"),
			"redeemed_by": userID,
			"redeemed_at": at,
		}).Error
}
