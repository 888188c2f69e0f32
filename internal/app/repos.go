package app

import (
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/repos"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	Logbook    repos.LogbookRepo
	Membership repos.MembershipRepo
	Invite     repos.InviteRepo
	Photo      repos.PhotoRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Logbook:    repos.NewLogbookRepo(db, log),
		Membership: repos.NewMembershipRepo(db, log),
		Invite:     repos.NewInviteRepo(db, log),
		Photo:      repos.NewPhotoRepo(db, log),
	}
}
