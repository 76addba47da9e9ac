package domain

import "context"

// ProfileFetcher retrieves one character's raw season profile from the
// ranking service.
type ProfileFetcher interface {
	Fetch(ctx context.Context, id CharacterIdentity) (*RawProfile, error)
}

// PlayerListSource supplies the ordered roster for a pipeline run.
type PlayerListSource interface {
	Roster(ctx context.Context) ([]CharacterIdentity, error)
}

// ReportSink consumes pipeline output. WriteResult is called once per
// processed character in roster order; WriteFailures once per run with the
// characters that could not be processed, also in roster order. Flush
// persists the report.
type ReportSink interface {
	WriteResult(ctx context.Context, result CharacterResult) error
	WriteFailures(ctx context.Context, failures []Failure) error
	Flush(ctx context.Context) error
}
