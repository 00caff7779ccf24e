package entities

import "fmt"

// Lesson is a single reference text and audio pair identified by level and position.
type Lesson struct {
	Level       Level
	Position    int
	Text        string
	AudioURL    string // empty when no audio source is configured
	Placeholder bool   // Text is a stand-in because the content source returned nothing
}

// PlaceholderText is shown and graded when a lesson has no published text.
// It always names the level and the position.
func PlaceholderText(level Level, position int) string {
	return fmt.Sprintf("[%s - %d] (matn mavjud emas. Admin faylni joylang.)", level, position)
}
