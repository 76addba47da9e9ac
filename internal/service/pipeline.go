package service

import (
	"context"
	"fmt"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline drives one report run: fetch every roster character under a
// bounded worker pool, normalize and aggregate inside each worker, then
// deliver results and failures to the sink strictly in roster order.
type Pipeline struct {
	fetcher     domain.ProfileFetcher
	normalizer  *Normalizer
	aggregator  *Aggregator
	sink        domain.ReportSink
	roster      domain.PlayerListSource
	concurrency int
	logger      zerolog.Logger
}

func NewPipeline(
	fetcher domain.ProfileFetcher,
	normalizer *Normalizer,
	aggregator *Aggregator,
	sink domain.ReportSink,
	roster domain.PlayerListSource,
	cfg *config.Config,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		normalizer:  normalizer,
		aggregator:  aggregator,
		sink:        sink,
		roster:      roster,
		concurrency: cfg.FetchConcurrency,
		logger:      logger,
	}
}

// outcome is one roster slot: exactly one of result or failure is set.
type outcome struct {
	result  *domain.CharacterResult
	failure *domain.Failure
}

func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := p.logger.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	identities, err := p.roster.Roster(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	logger.Info().Int("characters", len(identities)).Int("concurrency", p.concurrency).Msg("pipeline run starting")

	// Fetches may finish out of order; outcomes is indexed by roster slot so
	// delivery below stays in roster order.
	outcomes := make([]outcome, len(identities))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, id := range identities {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = p.process(gCtx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var failures []domain.Failure
	succeeded := 0
	for _, oc := range outcomes {
		if oc.failure != nil {
			failures = append(failures, *oc.failure)
			continue
		}
		if err := p.sink.WriteResult(ctx, *oc.result); err != nil {
			return fmt.Errorf("failed to write result for %s: %w", oc.result.Identity.Name, err)
		}
		succeeded++
	}
	if err := p.sink.WriteFailures(ctx, failures); err != nil {
		return fmt.Errorf("failed to write failures: %w", err)
	}
	if err := p.sink.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	logger.Info().Int("succeeded", succeeded).Int("failed", len(failures)).Msg("pipeline run complete")
	return nil
}

func (p *Pipeline) process(ctx context.Context, id domain.CharacterIdentity) outcome {
	logger := zerolog.Ctx(ctx).With().Str("name", id.Name).Str("realm", id.Realm).Logger()

	if err := ctx.Err(); err != nil {
		return outcome{failure: newFailure(id, domain.WrapError(domain.FailureService, "run aborted before fetch", err))}
	}

	profile, err := p.fetcher.Fetch(ctx, id)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(domain.KindOf(err))).Msg("failed to fetch profile")
		return outcome{failure: newFailure(id, err)}
	}

	matrix := p.normalizer.Normalize(profile)
	totals, summary, err := p.aggregator.Aggregate(profile, matrix)
	if err != nil {
		logger.Error().Err(err).Msg("aggregation failed")
		return outcome{failure: newFailure(id, err)}
	}

	logger.Info().
		Int("total_score", summary.TotalScore).
		Str("worst_dungeon", summary.WorstDungeon).
		Int("rows", len(matrix)).
		Msg("character processed")

	return outcome{result: &domain.CharacterResult{
		Identity: id,
		Matrix:   matrix,
		Totals:   totals,
		Summary:  summary,
	}}
}

func newFailure(id domain.CharacterIdentity, err error) *domain.Failure {
	failureID, genErr := gonanoid.New()
	if genErr != nil {
		failureID = ""
	}
	return &domain.Failure{
		ID:       failureID,
		Identity: id,
		Kind:     domain.KindOf(err),
		Message:  err.Error(),
	}
}
