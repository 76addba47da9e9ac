package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestRosterPreservesOrderAndRegion(t *testing.T) {
	path := writeRoster(t, `[
		{"name": "Thrall", "realm": "proudmoore"},
		{"name": "Jaina", "realm": "stormrage"},
		{"name": "thrall", "realm": "proudmoore"}
	]`)
	source := NewFileSource(&config.Config{RosterPath: path, Region: "eu"}, zerolog.Nop())

	got, err := source.Roster(context.Background())
	if err != nil {
		t.Fatalf("roster: %v", err)
	}

	want := []domain.CharacterIdentity{
		{Region: "eu", Realm: "proudmoore", Name: "Thrall"},
		{Region: "eu", Realm: "stormrage", Name: "Jaina"},
		{Region: "eu", Realm: "proudmoore", Name: "thrall"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("roster mismatch (-want +got):\n%s", diff)
	}
}

func TestRosterRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", `[]`},
		{"not json", `name,realm`},
		{"blank name", `[{"name": "  ", "realm": "proudmoore"}]`},
		{"missing realm", `[{"name": "Thrall"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRoster(t, tt.content)
			source := NewFileSource(&config.Config{RosterPath: path, Region: "us"}, zerolog.Nop())
			if _, err := source.Roster(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRosterMissingFile(t *testing.T) {
	source := NewFileSource(&config.Config{RosterPath: filepath.Join(t.TempDir(), "absent.json"), Region: "us"}, zerolog.Nop())
	if _, err := source.Roster(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
