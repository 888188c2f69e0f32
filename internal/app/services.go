package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/clients/gcp"
	"github.com/hearthside/logbook-backend/internal/clients/redis"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Avatar  services.AvatarService
	User    services.UserService
	Logbook services.LogbookService
	Content services.ContentService
	Invite  services.InviteService
	Gallery services.GalleryService
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	bucketService, err := gcp.NewBucketService(ctx, log)
	if err != nil {
		return Services{}, err
	}

	// The section cache is an accelerator; a missing Redis just means
	// every page read decodes and merges from Postgres.
	var sectionCache services.SectionCache
	if cache, cacheErr := redis.NewContentCache(log, cfg.SectionCacheTTL); cacheErr != nil {
		log.Warn("Section cache unavailable, serving reads from Postgres only", "error", cacheErr)
	} else {
		sectionCache = cache
	}

	avatarService, err := services.NewAvatarService(log, reposet.User, bucketService)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Auth: services.NewAuthService(
			db, log, reposet.User, reposet.UserToken, avatarService,
			cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Avatar:  avatarService,
		User:    services.NewUserService(db, log, reposet.User),
		Logbook: services.NewLogbookService(db, log, reposet.Logbook, reposet.Membership, reposet.Photo),
		Content: services.NewContentService(db, log, reposet.Logbook, bucketService, sectionCache),
		Invite:  services.NewInviteService(db, log, reposet.Logbook, reposet.Membership, reposet.Invite),
		Gallery: services.NewGalleryService(db, log, reposet.Logbook, reposet.Membership, reposet.Photo, bucketService),
	}, nil
}
