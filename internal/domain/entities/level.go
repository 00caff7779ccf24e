// Package entities contains domain entities used across the application.
package entities

import "strings"

// Level is a difficulty tier partitioning the lesson sequence.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// Levels lists all difficulty tiers in menu order.
var Levels = []Level{LevelEasy, LevelMedium, LevelHard}

// legacyLabels maps the Uzbek menu labels still found in old callback buttons.
var legacyLabels = map[string]Level{
	"oson":     LevelEasy,
	"o'rtacha": LevelMedium,
	"ortacha":  LevelMedium,
	"qiyin":    LevelHard,
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

func (l Level) String() string {
	return string(l)
}

// ParseLevel resolves a level name or a legacy Uzbek label.
// Unknown values fall back to LevelEasy.
func ParseLevel(s string) Level {
	key := strings.ToLower(strings.TrimSpace(s))
	if l := Level(key); l.Valid() {
		return l
	}
	if l, ok := legacyLabels[key]; ok {
		return l
	}
	return LevelEasy
}
