package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"keystone-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ProfileRepository caches raw profiles fetched from the ranking service so
// repeated runs inside the TTL window do not re-hit the API. It never feeds
// the report anything the API would not return.
type ProfileRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProfileRepository(sqlDB *sql.DB, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *ProfileRepository) Get(ctx context.Context, id domain.CharacterIdentity) (*domain.RawProfile, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM profiles WHERE region = ? AND realm = ? AND name = ?`,
		id.Region, id.Realm, id.Name,
	).Scan(&payload)
	if err != nil {
		return nil, err
	}

	var profile domain.RawProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile: %w", err)
	}
	return &profile, nil
}

// ShouldRefresh reports whether the cached profile for id is absent or older
// than ttl.
func (r *ProfileRepository) ShouldRefresh(ctx context.Context, id domain.CharacterIdentity, ttl time.Duration) (bool, error) {
	var fetchedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM profiles WHERE region = ? AND realm = ? AND name = ?`,
		id.Region, id.Realm, id.Name,
	).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		r.logger.Debug().Str("name", id.Name).Str("realm", id.Realm).Msg("profile not cached, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("name", id.Name).Msg("failed to read cached profile age")
		return false, err
	}

	timeSince := time.Since(fetchedAt)
	shouldRefresh := timeSince > ttl
	r.logger.Debug().
		Str("name", id.Name).
		Str("realm", id.Realm).
		Time("fetched_at", fetchedAt).
		Dur("time_since", timeSince).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if profile should refresh")

	return shouldRefresh, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, id domain.CharacterIdentity, profile *domain.RawProfile, fetchedAt time.Time) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	rowID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate row id: %w", err)
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, region, realm, name, payload, fetched_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (region, realm, name) DO UPDATE SET
		   payload = excluded.payload,
		   fetched_at = excluded.fetched_at,
		   updated_at = excluded.updated_at`,
		rowID, id.Region, id.Realm, id.Name, string(payload), fetchedAt, now, now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("name", id.Name).Str("realm", id.Realm).Msg("failed to upsert profile")
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
