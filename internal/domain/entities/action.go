package entities

// Action is a menu action decoded from a callback button.
// The set of implementations is closed: SelectLevel, Retry, Skip, Next and OpenMenu.
type Action interface {
	action()
}

// SelectLevel starts the given level from its first lesson.
type SelectLevel struct {
	Level Level
}

// Retry asks for another answer to the current lesson.
type Retry struct{}

// Skip moves past the current lesson without grading it.
type Skip struct{}

// Next advances after an accepted answer.
type Next struct{}

// MenuSection names a screen of the main menu.
type MenuSection string

const (
	MenuMain     MenuSection = "main"
	MenuLessons  MenuSection = "lessons"
	MenuVocab    MenuSection = "vocab"
	MenuSettings MenuSection = "settings"
	MenuFeedback MenuSection = "feedback"
	MenuShare    MenuSection = "share"
)

// OpenMenu shows a menu section.
type OpenMenu struct {
	Section MenuSection
}

func (SelectLevel) action() {}
func (Retry) action()       {}
func (Skip) action()        {}
func (Next) action()        {}
func (OpenMenu) action()    {}
