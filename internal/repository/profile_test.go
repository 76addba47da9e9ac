package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/database"
	"keystone-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *ProfileRepository {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "keystone_test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewProfileRepository(db, zerolog.Nop())
}

func testProfile() *domain.RawProfile {
	return &domain.RawProfile{
		Name:       "Thrall",
		Race:       "Orc",
		Class:      "Shaman",
		ActiveSpec: "Enhancement",
		Faction:    "horde",
		Realm:      "Proudmoore",
		BestRuns: []domain.RawRun{{
			Dungeon:     "Halls of Valor",
			Affix:       domain.AffixTyrannical,
			MythicLevel: 12,
			CompletedAt: time.Date(2026, 8, 12, 18, 30, 45, 0, time.UTC),
			ClearTimeMS: 1_500_000,
			ParTimeMS:   1_800_000,
			Score:       145.5,
		}},
		AlternateRuns: []domain.RawRun{},
	}
}

func TestProfileRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := domain.CharacterIdentity{Region: "us", Realm: "proudmoore", Name: "Thrall"}

	want := testProfile()
	if err := repo.Upsert(ctx, id, want, time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileUpsertReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := domain.CharacterIdentity{Region: "us", Realm: "proudmoore", Name: "Thrall"}

	if err := repo.Upsert(ctx, id, testProfile(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	updated := testProfile()
	updated.ActiveSpec = "Elemental"
	if err := repo.Upsert(ctx, id, updated, time.Now()); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ActiveSpec != "Elemental" {
		t.Errorf("active spec = %q, want Elemental", got.ActiveSpec)
	}
}

func TestShouldRefresh(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := domain.CharacterIdentity{Region: "us", Realm: "proudmoore", Name: "Thrall"}

	refresh, err := repo.ShouldRefresh(ctx, id, time.Minute)
	if err != nil {
		t.Fatalf("should refresh on empty cache: %v", err)
	}
	if !refresh {
		t.Error("empty cache must refresh")
	}

	if err := repo.Upsert(ctx, id, testProfile(), time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	refresh, err = repo.ShouldRefresh(ctx, id, time.Minute)
	if err != nil {
		t.Fatalf("should refresh on fresh cache: %v", err)
	}
	if refresh {
		t.Error("fresh cache must not refresh")
	}

	if err := repo.Upsert(ctx, id, testProfile(), time.Now().Add(-2*time.Minute)); err != nil {
		t.Fatalf("upsert stale: %v", err)
	}
	refresh, err = repo.ShouldRefresh(ctx, id, time.Minute)
	if err != nil {
		t.Fatalf("should refresh on stale cache: %v", err)
	}
	if !refresh {
		t.Error("stale cache must refresh")
	}
}

func TestGetMissingProfile(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), domain.CharacterIdentity{Region: "us", Realm: "proudmoore", Name: "Nobody"})
	if err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}
