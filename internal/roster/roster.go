package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// Entry is one roster document record. Region is not part of the document;
// it is pipeline-wide configuration.
type Entry struct {
	Name  string `json:"name"`
	Realm string `json:"realm"`
}

// FileSource reads the roster from a JSON array of entries. Order in the
// document is the order of every downstream output.
type FileSource struct {
	path   string
	region string
	logger zerolog.Logger
}

func NewFileSource(cfg *config.Config, logger zerolog.Logger) *FileSource {
	return &FileSource{
		path:   cfg.RosterPath,
		region: cfg.Region,
		logger: logger,
	}
}

func (s *FileSource) Roster(ctx context.Context) ([]domain.CharacterIdentity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("roster file %s is empty", s.path)
	}

	identities := make([]domain.CharacterIdentity, 0, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		realm := strings.TrimSpace(entry.Realm)
		if name == "" || realm == "" {
			return nil, fmt.Errorf("roster entry %d is missing name or realm", i)
		}
		identities = append(identities, domain.CharacterIdentity{
			Region: s.region,
			Realm:  realm,
			Name:   name,
		})
	}

	s.logger.Info().Int("characters", len(identities)).Str("path", s.path).Msg("roster loaded")
	return identities, nil
}
