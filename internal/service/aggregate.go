package service

import (
	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"
)

// Aggregator rolls a run matrix up into per-dungeon totals and a character
// summary. It trusts the normalizer's completeness postcondition and fails
// with a contract violation if the matrix breaks it.
type Aggregator struct {
	catalog domain.Catalog
}

func NewAggregator(cfg *config.Config) *Aggregator {
	return &Aggregator{catalog: cfg.Catalog}
}

func (a *Aggregator) Aggregate(profile *domain.RawProfile, matrix domain.RunMatrix) ([]domain.DungeonTotal, domain.ProfileSummary, error) {
	type pair struct{ dungeon, affix string }

	// Primary rows only: best or placeholder. Alternates never count.
	primary := make(map[pair]int, 2*len(a.catalog))
	for _, row := range matrix {
		if row.Category == domain.CategoryAlternate {
			continue
		}
		key := pair{row.Dungeon, row.Affix}
		if _, dup := primary[key]; dup {
			return nil, domain.ProfileSummary{},
				domain.Errorf(domain.FailureContract, "duplicate primary row for %s / %s", row.Dungeon, row.Affix)
		}
		primary[key] = row.Score
	}

	totals := make([]domain.DungeonTotal, 0, len(a.catalog))
	totalScore := 0
	worstDungeon := ""
	worstScore := 0
	for i, dungeon := range a.catalog {
		dungeonScore := 0
		for _, affix := range domain.Affixes {
			score, ok := primary[pair{dungeon, affix}]
			if !ok {
				return nil, domain.ProfileSummary{},
					domain.Errorf(domain.FailureContract, "run matrix missing primary row for %s / %s", dungeon, affix)
			}
			dungeonScore += score
		}
		totals = append(totals, domain.DungeonTotal{Dungeon: dungeon, Score: dungeonScore})
		totalScore += dungeonScore
		if i == 0 || dungeonScore < worstScore {
			worstDungeon = dungeon
			worstScore = dungeonScore
		}
	}

	summary := domain.ProfileSummary{
		Name:              profile.Name,
		Race:              profile.Race,
		Class:             profile.Class,
		Spec:              profile.ActiveSpec,
		Faction:           profile.Faction,
		Realm:             profile.Realm,
		TotalScore:        totalScore,
		WorstDungeon:      worstDungeon,
		WorstDungeonScore: worstScore,
	}
	return totals, summary, nil
}
