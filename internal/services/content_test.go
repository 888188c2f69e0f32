package services

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hearthside/logbook-backend/internal/content"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/repos"
	"github.com/hearthside/logbook-backend/internal/requestdata"
	"github.com/hearthside/logbook-backend/internal/types"
)

type contentTestEnv struct {
	db          *gorm.DB
	logbookRepo repos.LogbookRepo
	service     ContentService
	logbook     *types.Logbook
	parentID    uuid.UUID
	friendID    uuid.UUID
}

func newContentTestEnv(t *testing.T) *contentTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE logbook (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			family_name TEXT,
			page_sections TEXT,
			content_version INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE membership (
			id TEXT PRIMARY KEY,
			logbook_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (logbook_id, user_id)
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	parentID := uuid.New()
	friendID := uuid.New()
	logbook := &types.Logbook{
		ID:        uuid.New(),
		Slug:      "the-harpers",
		Title:     "The Harpers",
		CreatedBy: parentID,
	}
	if err := db.Create(logbook).Error; err != nil {
		t.Fatalf("seed logbook: %v", err)
	}
	memberships := []*types.Membership{
		{ID: uuid.New(), LogbookID: logbook.ID, UserID: parentID, Role: types.RoleParent},
		{ID: uuid.New(), LogbookID: logbook.ID, UserID: friendID, Role: types.RoleFriend},
	}
	for _, m := range memberships {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed membership: %v", err)
		}
	}

	logbookRepo := repos.NewLogbookRepo(db, log)
	return &contentTestEnv{
		db:          db,
		logbookRepo: logbookRepo,
		service:     NewContentService(db, log, logbookRepo, nil, nil),
		logbook:     logbook,
		parentID:    parentID,
		friendID:    friendID,
	}
}

func (env *contentTestEnv) as(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func (env *contentTestEnv) persistedOverrides(t *testing.T) content.OverrideDocument {
	t.Helper()
	fresh, err := env.logbookRepo.GetByIDs(context.Background(), nil, []uuid.UUID{env.logbook.ID})
	if err != nil || len(fresh) != 1 {
		t.Fatalf("reload logbook: %v", err)
	}
	doc, err := content.DecodeOverrides(fresh[0].PageSections)
	if err != nil {
		t.Fatalf("decode overrides: %v", err)
	}
	return doc
}

func TestFirstLoadServesDefaults(t *testing.T) {
	env := newContentTestEnv(t)
	for _, pt := range content.PageTypes() {
		sections, err := env.service.GetLogbookPageSections(env.as(env.friendID), env.logbook.Slug, pt)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", pt, err)
		}
		if !reflect.DeepEqual(sections, content.DefaultsFor(pt)) {
			t.Fatalf("%s: first load differs from defaults", pt)
		}
	}
}

func TestParentEditVisibleToFriend(t *testing.T) {
	env := newContentTestEnv(t)

	err := env.service.UpdatePageSection(env.as(env.parentID), env.logbook.Slug, content.PageHome,
		"hero", content.SectionData{"title": "The Harper Family"})
	if err != nil {
		t.Fatalf("parent edit failed: %v", err)
	}

	sections, err := env.service.GetLogbookPageSections(env.as(env.friendID), env.logbook.Slug, content.PageHome)
	if err != nil {
		t.Fatalf("friend read failed: %v", err)
	}
	if got := sections["hero"]["title"]; got != "The Harper Family" {
		t.Fatalf("hero.title = %v, want edited value", got)
	}
	// Untouched fields still come from the defaults.
	if got := sections["hero"]["buttonLabel"]; got != "Start Reading" {
		t.Fatalf("hero.buttonLabel = %v, want default", got)
	}

	// Persisted document stores only the delta.
	doc := env.persistedOverrides(t)
	home := doc[content.PageHome]
	if len(doc) != 1 || len(home) != 1 {
		t.Fatalf("override doc not minimal: %v", doc)
	}
	if len(home["hero"]) != 1 || home["hero"]["title"] != "The Harper Family" {
		t.Fatalf("hero override = %v, want only the edited title", home["hero"])
	}
}

func TestNonParentWritesRejected(t *testing.T) {
	env := newContentTestEnv(t)
	ctx := env.as(env.friendID)

	writes := map[string]func() error{
		"section update": func() error {
			return env.service.UpdatePageSection(ctx, env.logbook.Slug, content.PageHome,
				"hero", content.SectionData{"title": "nope"})
		},
		"visibility toggle": func() error {
			return env.service.ToggleSectionVisibility(ctx, env.logbook.Slug, content.PageHome, "hero", false)
		},
		"section reset": func() error {
			return env.service.ResetPageSection(ctx, env.logbook.Slug, content.PageHome, "hero")
		},
		"dot-path update": func() error {
			return env.service.UpdateLogbookContent(ctx, env.logbook.Slug, content.PageHome, "hero.title", "nope")
		},
	}
	for name, write := range writes {
		t.Run(name, func(t *testing.T) {
			err := write()
			if err == nil {
				t.Fatal("expected error")
			}
			ae := apierr.From(err)
			if ae.Status != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", ae.Status)
			}
			if err.Error() != "Only parents can edit page content" {
				t.Fatalf("message = %q", err.Error())
			}
		})
	}
}

func TestNonMemberAndMissingSlugIndistinguishable(t *testing.T) {
	env := newContentTestEnv(t)
	stranger := uuid.New()

	_, errNonMember := env.service.GetLogbookPageSections(env.as(stranger), env.logbook.Slug, content.PageHome)
	_, errMissing := env.service.GetLogbookPageSections(env.as(env.parentID), "no-such-slug", content.PageHome)

	for name, err := range map[string]error{"non-member": errNonMember, "missing slug": errMissing} {
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		ae := apierr.From(err)
		if ae.Status != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", name, ae.Status)
		}
	}
	if errNonMember.Error() != errMissing.Error() {
		t.Fatalf("messages differ: %q vs %q", errNonMember, errMissing)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	env := newContentTestEnv(t)
	ctx := env.as(env.parentID)

	if err := env.service.UpdatePageSection(ctx, env.logbook.Slug, content.PageHome,
		"hero", content.SectionData{"title": "Customized", "subtitle": "Also customized"}); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if err := env.service.ResetPageSection(ctx, env.logbook.Slug, content.PageHome, "hero"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	sections, err := env.service.GetLogbookPageSections(ctx, env.logbook.Slug, content.PageHome)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !reflect.DeepEqual(sections, content.DefaultsFor(content.PageHome)) {
		t.Fatal("page does not match defaults after reset")
	}
	if doc := env.persistedOverrides(t); len(doc) != 0 {
		t.Fatalf("override doc not empty after reset: %v", doc)
	}
}

func TestVisibilityToggle(t *testing.T) {
	env := newContentTestEnv(t)
	ctx := env.as(env.parentID)

	if err := env.service.ToggleSectionVisibility(ctx, env.logbook.Slug, content.PageHome, "stats", false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	sections, err := env.service.GetLogbookPageSections(ctx, env.logbook.Slug, content.PageHome)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if content.SectionVisible(sections, "stats") {
		t.Fatal("stats still visible after hiding")
	}
	// Hiding must not discard the section's content.
	if got := sections["stats"]["title"]; got != "Our Story So Far" {
		t.Fatalf("stats.title = %v, want default retained", got)
	}
}

func TestDotPathWritesCreateIntermediates(t *testing.T) {
	env := newContentTestEnv(t)
	ctx := env.as(env.parentID)

	err := env.service.BatchUpdateLogbookContent(ctx, env.logbook.Slug, content.PageHome, map[string]any{
		"hero.title":                "Batched",
		"navigation.links.0.label":  "Photos",
		"memories.extra.deep.value": float64(42),
	})
	if err != nil {
		t.Fatalf("batch update failed: %v", err)
	}

	items, err := env.service.GetLogbookContent(ctx, env.logbook.Slug, content.PageHome)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if items["hero.title"].Value != "Batched" {
		t.Fatalf("hero.title = %v", items["hero.title"].Value)
	}
	if items["navigation.links.0.label"].Value != "Photos" {
		t.Fatalf("links.0.label = %v", items["navigation.links.0.label"].Value)
	}
	if items["memories.extra.deep.value"].Value != float64(42) {
		t.Fatalf("deep value = %v", items["memories.extra.deep.value"].Value)
	}

	t.Run("invalid path rejected before any write", func(t *testing.T) {
		before := env.persistedOverrides(t)
		err := env.service.BatchUpdateLogbookContent(ctx, env.logbook.Slug, content.PageHome, map[string]any{
			"hero.title": "x",
			"":           "y",
		})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if ae := apierr.From(err); ae.Status != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", ae.Status)
		}
		if after := env.persistedOverrides(t); !reflect.DeepEqual(before, after) {
			t.Fatal("partial batch was persisted")
		}
	})
}

// racingLogbookRepo lands a competing write right before the first
// UpdatePageSections call, forcing the version check to fail once.
type racingLogbookRepo struct {
	repos.LogbookRepo
	db    *gorm.DB
	id    uuid.UUID
	raced bool
}

func (r *racingLogbookRepo) UpdatePageSections(ctx context.Context, tx *gorm.DB, logbookID uuid.UUID, sections datatypes.JSON, expectedVersion int64) error {
	if !r.raced {
		r.raced = true
		rival := `{"home":{"hero":{"title":"Rival Title"}}}`
		err := r.db.Exec(
			`UPDATE logbook SET page_sections = ?, content_version = content_version + 1 WHERE id = ?`,
			rival, r.id,
		).Error
		if err != nil {
			return err
		}
	}
	return r.LogbookRepo.UpdatePageSections(ctx, tx, logbookID, sections, expectedVersion)
}

func TestConcurrentWritesBothSurvive(t *testing.T) {
	env := newContentTestEnv(t)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	racing := &racingLogbookRepo{LogbookRepo: env.logbookRepo, db: env.db, id: env.logbook.ID}
	service := NewContentService(env.db, log, racing, nil, nil)
	ctx := env.as(env.parentID)

	err = env.service.UpdatePageSection(ctx, env.logbook.Slug, content.PageHome,
		"hero", content.SectionData{"subtitle": "Seed"})
	if err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	// This write races the rival title edit; the retry must preserve it.
	err = service.UpdatePageSection(ctx, env.logbook.Slug, content.PageHome,
		"hero", content.SectionData{"subtitle": "Our Subtitle"})
	if err != nil {
		t.Fatalf("racing write failed: %v", err)
	}
	if !racing.raced {
		t.Fatal("race never triggered")
	}

	sections, err := env.service.GetLogbookPageSections(ctx, env.logbook.Slug, content.PageHome)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got := sections["hero"]["title"]; got != "Rival Title" {
		t.Fatalf("hero.title = %v, rival write was lost", got)
	}
	if got := sections["hero"]["subtitle"]; got != "Our Subtitle" {
		t.Fatalf("hero.subtitle = %v, retried write was lost", got)
	}
}

func TestConflictExhaustionSurfacesAsConflict(t *testing.T) {
	env := newContentTestEnv(t)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	service := NewContentService(env.db, log, alwaysConflictRepo{env.logbookRepo}, nil, nil)

	err = service.UpdatePageSection(env.as(env.parentID), env.logbook.Slug, content.PageHome,
		"hero", content.SectionData{"title": "never lands"})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if ae := apierr.From(err); ae.Status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", ae.Status)
	}
}

type alwaysConflictRepo struct {
	repos.LogbookRepo
}

func (alwaysConflictRepo) UpdatePageSections(context.Context, *gorm.DB, uuid.UUID, datatypes.JSON, int64) error {
	return repos.ErrVersionConflict
}
