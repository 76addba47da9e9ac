package domain

import (
	"time"
)

// Affix names tracked per season. Alphabetical order here matches the
// row ordering of a RunMatrix (Fortified sorts before Tyrannical).
const (
	AffixFortified  = "Fortified"
	AffixTyrannical = "Tyrannical"
)

// Affixes lists the tracked affixes in sorted order.
var Affixes = [2]string{AffixFortified, AffixTyrannical}

// NotAttempted is the rendered value for every time and level field of a
// synthesized placeholder row.
const NotAttempted = "not attempted"

type Category string

const (
	CategoryBest      Category = "best"
	CategoryAlternate Category = "alternate"
	CategoryNotDone   Category = "not done"
)

// CharacterIdentity is the immutable lookup key for one roster entry.
type CharacterIdentity struct {
	Region string
	Realm  string
	Name   string
}

type RawRun struct {
	Dungeon     string
	Affix       string
	MythicLevel int
	CompletedAt time.Time
	ClearTimeMS int64
	ParTimeMS   int64
	Score       float64
}

type RawProfile struct {
	Name          string
	Race          string
	Class         string
	ActiveSpec    string
	Faction       string
	Realm         string
	BestRuns      []RawRun
	AlternateRuns []RawRun
}

// DungeonRun is one report row. Time and level fields are carried as
// rendered strings so a placeholder row and a real row share one schema.
type DungeonRun struct {
	Dungeon   string
	Affix     string
	KeyLevel  string
	Completed string
	ClearTime string
	ParTime   string
	Remaining string
	Score     int
	Category  Category
}

// RunMatrix holds exactly one best-or-placeholder row per
// (catalog dungeon, affix) pair plus any alternate rows, sorted by
// dungeon name then affix name.
type RunMatrix []DungeonRun

type DungeonTotal struct {
	Dungeon string
	Score   int
}

type ProfileSummary struct {
	Name              string
	Race              string
	Class             string
	Spec              string
	Faction           string
	Realm             string
	TotalScore        int
	WorstDungeon      string
	WorstDungeonScore int
}

// CharacterResult is everything the report sink receives for one
// successfully processed character.
type CharacterResult struct {
	Identity CharacterIdentity
	Matrix   RunMatrix
	Totals   []DungeonTotal
	Summary  ProfileSummary
}

// Failure records one character that could not be processed.
type Failure struct {
	ID       string // nanoid
	Identity CharacterIdentity
	Kind     FailureKind
	Message  string
}
