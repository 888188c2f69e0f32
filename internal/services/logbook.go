package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/content"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/repos"
	"github.com/hearthside/logbook-backend/internal/requestdata"
	"github.com/hearthside/logbook-backend/internal/types"
)

// LogbookStats is the aggregate view for a logbook's dashboard.
type LogbookStats struct {
	MemberCount     int64 `json:"member_count"`
	PhotoCount      int64 `json:"photo_count"`
	CustomizedPages int   `json:"customized_pages"`
}

type LogbookView struct {
	Logbook *types.Logbook `json:"logbook"`
	Role    types.Role     `json:"role"`
	Stats   *LogbookStats  `json:"stats,omitempty"`
}

type LogbookService interface {
	CreateLogbook(ctx context.Context, title, familyName string) (*types.Logbook, error)
	GetLogbook(ctx context.Context, slug string, withStats bool) (*LogbookView, error)
	ListMyLogbooks(ctx context.Context) ([]*types.Logbook, error)
	ListMembers(ctx context.Context, slug string) ([]*types.Membership, error)
}

type logbookService struct {
	db             *gorm.DB
	log            *logger.Logger
	logbookRepo    repos.LogbookRepo
	membershipRepo repos.MembershipRepo
	photoRepo      repos.PhotoRepo
}

func NewLogbookService(
	db *gorm.DB,
	log *logger.Logger,
	logbookRepo repos.LogbookRepo,
	membershipRepo repos.MembershipRepo,
	photoRepo repos.PhotoRepo,
) LogbookService {
	return &logbookService{
		db:             db,
		log:            log.With("service", "LogbookService"),
		logbookRepo:    logbookRepo,
		membershipRepo: membershipRepo,
		photoRepo:      photoRepo,
	}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug; a short random suffix
// keeps two families named the same apart.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugCleaner.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "logbook"
	}
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return s + "-" + suffix
}

func (ls *logbookService) CreateLogbook(ctx context.Context, title, familyName string) (*types.Logbook, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation("A logbook title is required")
	}

	logbook := &types.Logbook{
		ID:         uuid.New(),
		Slug:       Slugify(title),
		Title:      title,
		FamilyName: strings.TrimSpace(familyName),
		CreatedBy:  rd.UserID,
	}
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ls.logbookRepo.Create(ctx, tx, logbook); err != nil {
			if isUniqueViolation(err) {
				return apierr.Conflict("A logbook with this name already exists, try again")
			}
			return apierr.Persistence(fmt.Errorf("create logbook: %w", err))
		}
		membership := &types.Membership{
			ID:        uuid.New(),
			LogbookID: logbook.ID,
			UserID:    rd.UserID,
			Role:      types.RoleParent,
		}
		if _, err := ls.membershipRepo.Create(ctx, tx, []*types.Membership{membership}); err != nil {
			return apierr.Persistence(fmt.Errorf("create founding membership: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return logbook, nil
}

func (ls *logbookService) GetLogbook(ctx context.Context, slug string, withStats bool) (*LogbookView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	logbook, membership, err := ls.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, apierr.NotFound(msgLogbookNotFound)
	}

	view := &LogbookView{Logbook: logbook, Role: membership.Role}
	if !withStats {
		return view, nil
	}

	// Independent reads fan out concurrently.
	stats := &LogbookStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := ls.membershipRepo.CountByLogbook(gctx, nil, logbook.ID)
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		stats.MemberCount = n
		return nil
	})
	g.Go(func() error {
		n, err := ls.photoRepo.CountByLogbook(gctx, nil, logbook.ID)
		if err != nil {
			return fmt.Errorf("count photos: %w", err)
		}
		stats.PhotoCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.Persistence(err)
	}

	if doc, decErr := content.DecodeOverrides(logbook.PageSections); decErr == nil {
		stats.CustomizedPages = len(doc)
	}
	view.Stats = stats
	return view, nil
}

func (ls *logbookService) ListMyLogbooks(ctx context.Context) ([]*types.Logbook, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	logbooks, err := ls.logbookRepo.ListForUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list logbooks: %w", err))
	}
	return logbooks, nil
}

func (ls *logbookService) ListMembers(ctx context.Context, slug string) ([]*types.Membership, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthenticated("Not signed in")
	}
	logbook, membership, err := ls.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, apierr.NotFound(msgLogbookNotFound)
	}
	members, err := ls.membershipRepo.ListByLogbook(ctx, nil, logbook.ID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list members: %w", err))
	}
	return members, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
