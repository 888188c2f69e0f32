package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/repos"
	"github.com/hearthside/logbook-backend/internal/requestdata"
	"github.com/hearthside/logbook-backend/internal/types"
)

const (
	inviteCodeLength = 8
	inviteDefaultTTL = 7 * 24 * time.Hour
)

// Unambiguous uppercase alphabet for invite codes (no 0/O, 1/I).
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type InviteService interface {
	CreateInvite(ctx context.Context, slug string, role types.Role, maxUses int) (*types.Invite, error)
	RedeemInvite(ctx context.Context, code string) (*types.Membership, error)
	ListInvites(ctx context.Context, slug string) ([]*types.Invite, error)
}

type inviteService struct {
	db             *gorm.DB
	log            *logger.Logger
	logbookRepo    repos.LogbookRepo
	membershipRepo repos.MembershipRepo
	inviteRepo     repos.InviteRepo
}

func NewInviteService(
	db *gorm.DB,
	log *logger.Logger,
	logbookRepo repos.LogbookRepo,
	membershipRepo repos.MembershipRepo,
	inviteRepo repos.InviteRepo,
) InviteService {
	return &inviteService{
		db:             db,
		log:            log.With("service", "InviteService"),
		logbookRepo:    logbookRepo,
		membershipRepo: membershipRepo,
		inviteRepo:     inviteRepo,
	}
}

func newInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(inviteAlphabet[int(c)%len(inviteAlphabet)])
	}
	return b.String(), nil
}

func (is *inviteService) CreateInvite(ctx context.Context, slug string, role types.Role, maxUses int) (*types.Invite, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	if !types.ValidRole(role) {
		return nil, apierr.Validation(fmt.Sprintf("Unknown role %q", role))
	}
	if maxUses <= 0 {
		maxUses = 1
	}

	logbook, membership, err := is.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, apierr.NotFound(msgLogbookNotFound)
	}
	if membership.Role != types.RoleParent {
		return nil, apierr.Forbidden("Only parents can invite people")
	}

	code, err := newInviteCode()
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("generate invite code: %w", err))
	}
	invite := &types.Invite{
		ID:        uuid.New(),
		LogbookID: logbook.ID,
		Code:      code,
		Role:      role,
		CreatedBy: rd.UserID,
		ExpiresAt: time.Now().Add(inviteDefaultTTL),
		MaxUses:   maxUses,
	}
	if _, err := is.inviteRepo.Create(ctx, nil, invite); err != nil {
		if isUniqueViolation(err) {
			// Code collision; vanishingly rare with a 32^8 space.
			return nil, apierr.Conflict("Invite code collision, please retry")
		}
		return nil, apierr.Persistence(fmt.Errorf("create invite: %w", err))
	}
	return invite, nil
}

func (is *inviteService) RedeemInvite(ctx context.Context, code string) (*types.Membership, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apierr.Validation("An invite code is required")
	}

	var membership *types.Membership
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invite, err := is.inviteRepo.GetByCode(ctx, tx, code)
		if err != nil {
			return apierr.Persistence(fmt.Errorf("fetch invite: %w", err))
		}
		if invite == nil {
			return apierr.NotFound("Invite code not found")
		}
		now := time.Now()
		if invite.Expired(now) {
			return apierr.Validation("This invite has expired")
		}
		if invite.Exhausted() {
			return apierr.Validation("This invite has already been used")
		}

		existing, err := is.membershipRepo.GetByLogbookAndUser(ctx, tx, invite.LogbookID, rd.UserID)
		if err != nil {
			return apierr.Persistence(fmt.Errorf("check membership: %w", err))
		}
		if existing != nil {
			// Redeeming into a logbook you already belong to is a
			// no-op, not an error.
			membership = existing
			return nil
		}

		membership = &types.Membership{
			ID:        uuid.New(),
			LogbookID: invite.LogbookID,
			UserID:    rd.UserID,
			Role:      invite.Role,
		}
		if _, err := is.membershipRepo.Create(ctx, tx, []*types.Membership{membership}); err != nil {
			return apierr.Persistence(fmt.Errorf("create membership: %w", err))
		}
		if err := is.inviteRepo.MarkRedeemed(ctx, tx, invite.ID, rd.UserID, now); err != nil {
			return apierr.Persistence(fmt.Errorf("mark invite redeemed: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (is *inviteService) ListInvites(ctx context.Context, slug string) ([]*types.Invite, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	logbook, membership, err := is.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, apierr.NotFound(msgLogbookNotFound)
	}
	if membership.Role != types.RoleParent {
		return nil, apierr.Forbidden("Only parents can view invites")
	}
	invites, err := is.inviteRepo.ListByLogbook(ctx, nil, logbook.ID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list invites: %w", err))
	}
	return invites, nil
}
