package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/clients/gcp"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/repos"
	"github.com/hearthside/logbook-backend/internal/types"
)

const avatarSize = 512

// Background palette for generated avatars. Hue is picked by hashing
// the user's email so repeated generations are stable.
var avatarColors = []color.NRGBA{
	{R: 0x7C, G: 0x4D, B: 0xFF, A: 0xFF},
	{R: 0xFF, G: 0x6F, B: 0x61, A: 0xFF},
	{R: 0x2E, G: 0xC4, B: 0xB6, A: 0xFF},
	{R: 0xFF, G: 0xB3, B: 0x47, A: 0xFF},
	{R: 0x4F, G: 0x86, B: 0xC6, A: 0xFF},
	{R: 0x9C, G: 0x27, B: 0xB0, A: 0xFF},
	{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
	{R: 0xEF, G: 0x53, B: 0x50, A: 0xFF},
}

type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
	// SetCustomUserAvatar replaces the user's avatar with an uploaded
	// image and returns the new public URL.
	SetCustomUserAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, contentType string) (string, error)
}

type avatarService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	bucketService gcp.BucketService
	fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, userRepo repos.UserRepo, bucketService gcp.BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	var face font.Face
	if fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT")); fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read avatar font: %w", err)
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse avatar font: %w", err)
		}
		face = truetype.NewFace(f, &truetype.Options{Size: avatarSize * 0.42})
	} else {
		serviceLog.Warn("AVATAR_FONT not set, generated avatars will have no initials")
	}

	return &avatarService{
		log:           serviceLog,
		userRepo:      userRepo,
		bucketService: bucketService,
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return fmt.Errorf("generate avatar: %w", err)
	}

	key := fmt.Sprintf("avatars/%s.png", user.ID)
	if err := as.bucketService.UploadFile(ctx, gcp.BucketCategoryAvatar, key, bytes.NewReader(buf.Bytes()), "image/png"); err != nil {
		return fmt.Errorf("upload avatar: %w", err)
	}
	url := as.bucketService.PublicURL(gcp.BucketCategoryAvatar, key)

	if err := as.userRepo.UpdateAvatar(ctx, tx, user.ID, key, url); err != nil {
		return fmt.Errorf("persist avatar reference: %w", err)
	}
	user.AvatarBucketKey = key
	user.AvatarURL = url
	return nil
}

func (as *avatarService) SetCustomUserAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", apierr.Validation("Only image uploads are accepted")
	}
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return "", apierr.Persistence(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return "", apierr.NotFound("User not found")
	}
	oldKey := users[0].AvatarBucketKey

	key := fmt.Sprintf("avatars/%s-%s", userID, uuid.New())
	if err := as.bucketService.UploadFile(ctx, gcp.BucketCategoryAvatar, key, file, contentType); err != nil {
		return "", apierr.Internal(fmt.Errorf("upload avatar: %w", err))
	}
	url := as.bucketService.PublicURL(gcp.BucketCategoryAvatar, key)
	if err := as.userRepo.UpdateAvatar(ctx, nil, userID, key, url); err != nil {
		return "", apierr.Persistence(fmt.Errorf("persist avatar reference: %w", err))
	}
	if oldKey != "" && oldKey != key {
		if err := as.bucketService.DeleteFile(ctx, gcp.BucketCategoryAvatar, oldKey); err != nil {
			as.log.Warn("Failed to delete replaced avatar object", "key", oldKey, "error", err)
		}
	}
	return url, nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	var buf bytes.Buffer

	dc := gg.NewContext(avatarSize, avatarSize)
	bg := avatarColors[colorIndexFor(user.Email)]
	dc.SetColor(bg)
	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Fill()

	if as.fontFace != nil {
		initials := initialsFor(user)
		dc.SetFontFace(as.fontFace)
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(initials, avatarSize/2, avatarSize/2, 0.5, 0.5)
	}

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("encode avatar png: %w", err)
	}
	return buf, nil
}

func colorIndexFor(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(email)))
	return int(h.Sum32() % uint32(len(avatarColors)))
}

func initialsFor(user *types.User) string {
	var b strings.Builder
	if r := []rune(user.FirstName); len(r) > 0 {
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	if r := []rune(user.LastName); len(r) > 0 {
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
