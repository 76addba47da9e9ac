package service

import (
	"context"
	"time"
	"unicode"
	"unicode/utf8"

	"keystone-tracker/internal/api"
	"keystone-tracker/internal/config"
	"keystone-tracker/internal/constants"
	"keystone-tracker/internal/domain"
	"keystone-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// Fetcher retrieves one character's raw profile, serving from the SQLite
// cache when the entry is younger than the TTL and falling back to the
// ranking API otherwise.
type Fetcher struct {
	client       *api.RaiderIOClient
	repo         *repository.ProfileRepository
	extraFields  string
	fetchTimeout time.Duration
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

func NewFetcher(client *api.RaiderIOClient, repo *repository.ProfileRepository, cfg *config.Config, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:       client,
		repo:         repo,
		extraFields:  cfg.ExtraFields,
		fetchTimeout: cfg.FetchTimeout,
		cacheTTL:     cfg.CacheTTL,
		logger:       logger,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, id domain.CharacterIdentity) (*domain.RawProfile, error) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	shouldRefresh, err := f.repo.ShouldRefresh(dbCtx, id, f.cacheTTL)
	if err != nil {
		f.logger.Warn().Err(err).Str("name", id.Name).Msg("cache lookup failed, fetching from API")
		shouldRefresh = true
	}
	if !shouldRefresh {
		if profile, err := f.repo.Get(dbCtx, id); err == nil {
			f.logger.Info().Str("name", id.Name).Str("realm", id.Realm).Msg("returning cached profile")
			return profile, nil
		}
	}

	profile, err := f.fetchRemote(ctx, id)
	if err != nil && domain.IsKind(err, domain.FailureNotFound) {
		// The service has been seen rejecting names whose first letter does
		// not match its stored capitalization. Toggle it and try once more.
		retryID := id
		retryID.Name = toggleFirstRuneCase(id.Name)
		f.logger.Warn().
			Str("name", id.Name).
			Str("retry_name", retryID.Name).
			Msg("character not found, retrying with case-toggled name")
		profile, err = f.fetchRemote(ctx, retryID)
	}
	if err != nil {
		return nil, err
	}

	upsertCtx, upsertCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer upsertCancel()
	if upsertErr := f.repo.Upsert(upsertCtx, id, profile, time.Now()); upsertErr != nil {
		f.logger.Warn().Err(upsertErr).Str("name", id.Name).Msg("failed to cache profile")
	}

	f.logger.Info().
		Str("name", id.Name).
		Str("realm", id.Realm).
		Int("best_runs", len(profile.BestRuns)).
		Int("alternate_runs", len(profile.AlternateRuns)).
		Msg("profile fetched successfully")
	return profile, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, id domain.CharacterIdentity) (*domain.RawProfile, error) {
	apiCtx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	resp, err := f.client.GetCharacterProfile(apiCtx, id.Region, id.Realm, id.Name, f.extraFields)
	if err != nil {
		return nil, err
	}
	return mapProfile(resp)
}

func mapProfile(resp *api.CharacterProfileResponse) (*domain.RawProfile, error) {
	if resp.Name == "" || resp.Realm == "" {
		return nil, domain.NewError(domain.FailureMalformed, "response missing character name or realm")
	}
	if resp.MythicPlusBestRuns == nil || resp.MythicPlusAlternateRuns == nil {
		return nil, domain.NewError(domain.FailureMalformed, "response missing run lists")
	}

	best, err := mapRuns(*resp.MythicPlusBestRuns)
	if err != nil {
		return nil, err
	}
	alternate, err := mapRuns(*resp.MythicPlusAlternateRuns)
	if err != nil {
		return nil, err
	}

	return &domain.RawProfile{
		Name:          resp.Name,
		Race:          resp.Race,
		Class:         resp.Class,
		ActiveSpec:    resp.ActiveSpecName,
		Faction:       resp.Faction,
		Realm:         resp.Realm,
		BestRuns:      best,
		AlternateRuns: alternate,
	}, nil
}

func mapRuns(runs []api.ProfileRun) ([]domain.RawRun, error) {
	mapped := make([]domain.RawRun, 0, len(runs))
	for _, run := range runs {
		if run.Dungeon == "" {
			return nil, domain.NewError(domain.FailureMalformed, "run entry missing dungeon name")
		}
		if len(run.Affixes) == 0 {
			return nil, domain.Errorf(domain.FailureMalformed, "run entry for %s missing affix list", run.Dungeon)
		}
		mapped = append(mapped, domain.RawRun{
			Dungeon:     run.Dungeon,
			Affix:       run.Affixes[0].Name,
			MythicLevel: run.MythicLevel,
			CompletedAt: run.CompletedAt,
			ClearTimeMS: run.ClearTimeMS,
			ParTimeMS:   run.ParTimeMS,
			Score:       run.Score,
		})
	}
	return mapped, nil
}

func toggleFirstRuneCase(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	if unicode.IsUpper(r) {
		return string(unicode.ToLower(r)) + name[size:]
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
