package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/types"
)

// newTestDB opens an in-memory sqlite database with the tables the
// logbook repo touches. The production schema is created by gorm against
// Postgres; here the tables are declared by hand because the Postgres
// column defaults do not exist in sqlite.
func newTestDB(t *testing.T) *gorm.DB {
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
	// One connection so every session sees the same :memory: database.
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
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func seedLogbook(t *testing.T, db *gorm.DB, slug string, members map[uuid.UUID]types.Role) *types.Logbook {
	t.Helper()
	owner := uuid.New()
	for id, role := range members {
		if role == types.RoleParent {
			owner = id
			break
		}
	}
	logbook := &types.Logbook{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     "Test Logbook",
		CreatedBy: owner,
	}
	if err := db.Create(logbook).Error; err != nil {
		t.Fatalf("seed logbook: %v", err)
	}
	for id, role := range members {
		m := &types.Membership{
			ID:        uuid.New(),
			LogbookID: logbook.ID,
			UserID:    id,
			Role:      role,
		}
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed membership: %v", err)
		}
	}
	return logbook
}

func TestGetBySlugForUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewLogbookRepo(db, newTestLogger(t))
	ctx := context.Background()

	parent := uuid.New()
	friend := uuid.New()
	stranger := uuid.New()
	seedLogbook(t, db, "the-smiths", map[uuid.UUID]types.Role{
		parent: types.RoleParent,
		friend: types.RoleFriend,
	})

	t.Run("member resolves logbook and role", func(t *testing.T) {
		logbook, membership, err := repo.GetBySlugForUser(ctx, nil, "the-smiths", friend)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logbook == nil || membership == nil {
			t.Fatal("expected logbook and membership")
		}
		if membership.Role != types.RoleFriend {
			t.Fatalf("role = %q, want friend", membership.Role)
		}
	})

	t.Run("non-member reads like missing slug", func(t *testing.T) {
		logbook, membership, err := repo.GetBySlugForUser(ctx, nil, "the-smiths", stranger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logbook != nil || membership != nil {
			t.Fatal("expected nil, nil for non-member")
		}
	})

	t.Run("missing slug", func(t *testing.T) {
		logbook, membership, err := repo.GetBySlugForUser(ctx, nil, "no-such-logbook", parent)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logbook != nil || membership != nil {
			t.Fatal("expected nil, nil for missing slug")
		}
	})
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewLogbookRepo(db, newTestLogger(t))
	ctx := context.Background()

	member := uuid.New()
	other := uuid.New()
	seedLogbook(t, db, "mine", map[uuid.UUID]types.Role{member: types.RoleParent})
	seedLogbook(t, db, "also-mine", map[uuid.UUID]types.Role{member: types.RoleFamily, other: types.RoleParent})
	seedLogbook(t, db, "not-mine", map[uuid.UUID]types.Role{other: types.RoleParent})

	logbooks, err := repo.ListForUser(ctx, nil, member)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logbooks) != 2 {
		t.Fatalf("got %d logbooks, want 2", len(logbooks))
	}
	for _, lb := range logbooks {
		if lb.Slug == "not-mine" {
			t.Fatal("listed a logbook the user is not a member of")
		}
	}
}

func TestUpdatePageSectionsVersionGuard(t *testing.T) {
	db := newTestDB(t)
	repo := NewLogbookRepo(db, newTestLogger(t))
	ctx := context.Background()

	parent := uuid.New()
	logbook := seedLogbook(t, db, "versioned", map[uuid.UUID]types.Role{parent: types.RoleParent})

	doc := datatypes.JSON(`{"home":{"hero":{"title":"Ours"}}}`)
	if err := repo.UpdatePageSections(ctx, nil, logbook.ID, doc, 0); err != nil {
		t.Fatalf("first write: %v", err)
	}

	// The same expected version again must lose.
	err := repo.UpdatePageSections(ctx, nil, logbook.ID, doc, 0)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale write error = %v, want ErrVersionConflict", err)
	}

	// The bumped version wins, and the payload persisted.
	doc2 := datatypes.JSON(`{"home":{"hero":{"title":"Updated"}}}`)
	if err := repo.UpdatePageSections(ctx, nil, logbook.ID, doc2, 1); err != nil {
		t.Fatalf("second write: %v", err)
	}
	fresh, err := repo.GetByIDs(ctx, nil, []uuid.UUID{logbook.ID})
	if err != nil || len(fresh) != 1 {
		t.Fatalf("reload logbook: %v", err)
	}
	if fresh[0].ContentVersion != 2 {
		t.Fatalf("content_version = %d, want 2", fresh[0].ContentVersion)
	}
	if string(fresh[0].PageSections) != string(doc2) {
		t.Fatalf("page_sections = %s, want %s", fresh[0].PageSections, doc2)
	}
}
