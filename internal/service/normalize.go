package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"

	"github.com/rs/zerolog"
)

const completedAtLayout = "2006-01-02 15:04:05"

// Normalizer expands a character's sparse best and alternate run lists into
// the complete per-dungeon, per-affix run matrix, synthesizing placeholder
// rows for every (catalog dungeon, affix) pair with no best run.
type Normalizer struct {
	catalog domain.Catalog
	logger  zerolog.Logger
}

func NewNormalizer(cfg *config.Config, logger zerolog.Logger) *Normalizer {
	return &Normalizer{catalog: cfg.Catalog, logger: logger}
}

func (n *Normalizer) Normalize(profile *domain.RawProfile) domain.RunMatrix {
	rows := make(domain.RunMatrix, 0, len(profile.BestRuns)+len(profile.AlternateRuns)+2*len(n.catalog))

	type pair struct{ dungeon, affix string }

	// A run for a dungeon the catalog does not know usually means the catalog
	// lags the live season; the character would then report all-placeholder
	// rows despite having real runs. Surface it, once per dungeon.
	warnedOffCatalog := make(map[string]struct{})
	warnOffCatalog := func(dungeon string) {
		if n.catalog.Contains(dungeon) {
			return
		}
		if _, warned := warnedOffCatalog[dungeon]; warned {
			return
		}
		warnedOffCatalog[dungeon] = struct{}{}
		n.logger.Warn().Str("dungeon", dungeon).Msg("run references a dungeon outside the configured catalog")
	}

	// Only best runs satisfy completeness. An alternate run for a pair still
	// gets a placeholder next to it; alternates are informational rows.
	covered := make(map[pair]struct{}, len(profile.BestRuns))
	for _, raw := range profile.BestRuns {
		warnOffCatalog(raw.Dungeon)
		rows = append(rows, mapRawRun(raw, domain.CategoryBest))
		covered[pair{raw.Dungeon, raw.Affix}] = struct{}{}
	}
	for _, raw := range profile.AlternateRuns {
		warnOffCatalog(raw.Dungeon)
		rows = append(rows, mapRawRun(raw, domain.CategoryAlternate))
	}
	for _, dungeon := range n.catalog {
		for _, affix := range domain.Affixes {
			if _, ok := covered[pair{dungeon, affix}]; ok {
				continue
			}
			rows = append(rows, placeholderRun(dungeon, affix))
		}
	}

	slices.SortStableFunc(rows, func(a, b domain.DungeonRun) int {
		if c := strings.Compare(a.Dungeon, b.Dungeon); c != 0 {
			return c
		}
		return strings.Compare(a.Affix, b.Affix)
	})

	return rows
}

func mapRawRun(raw domain.RawRun, category domain.Category) domain.DungeonRun {
	return domain.DungeonRun{
		Dungeon:   raw.Dungeon,
		Affix:     raw.Affix,
		KeyLevel:  strconv.Itoa(raw.MythicLevel),
		Completed: raw.CompletedAt.UTC().Format(completedAtLayout),
		ClearTime: formatDuration(raw.ClearTimeMS),
		ParTime:   formatDuration(raw.ParTimeMS),
		Remaining: formatRemaining(raw.ParTimeMS - raw.ClearTimeMS),
		Score:     int(raw.Score),
		Category:  category,
	}
}

func placeholderRun(dungeon, affix string) domain.DungeonRun {
	return domain.DungeonRun{
		Dungeon:   dungeon,
		Affix:     affix,
		KeyLevel:  domain.NotAttempted,
		Completed: domain.NotAttempted,
		ClearTime: domain.NotAttempted,
		ParTime:   domain.NotAttempted,
		Remaining: domain.NotAttempted,
		Score:     0,
		Category:  domain.CategoryNotDone,
	}
}

// formatDuration renders a millisecond span as hh:mm:ss.
func formatDuration(ms int64) string {
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// formatRemaining renders par minus clear. A non-positive difference takes a
// single leading minus in front of the absolute span, so overrunning par by
// five minutes renders as -00:05:00 and an exact tie as -00:00:00.
func formatRemaining(diffMS int64) string {
	if diffMS <= 0 {
		return "-" + formatDuration(-diffMS)
	}
	return formatDuration(diffMS)
}
