package entities

// SessionState is the lesson state of a learner derived from the stored progress.
type SessionState string

const (
	StateNoLevel        SessionState = "no_level"        // no level chosen yet
	StateLevelSelected  SessionState = "level_selected"  // level chosen, no lesson issued
	StateAwaitingAnswer SessionState = "awaiting_answer" // lesson issued, answer expected
	StateAnswered       SessionState = "answered"        // lesson accepted, waiting for "next"
)

// UserProgress is the durable per-learner lesson state.
type UserProgress struct {
	UserID       int64
	ChatID       int64  // destination chat for outbound messages
	Level        *Level // nil until the learner picks a level
	Position     int    // 1-based lesson index within the level
	Awaiting     bool   // a lesson was issued and a graded answer is expected
	ExpectedText string // reference text of the issued lesson
	CorrectCount int    // accepted answers in the current level run
}

// NewUserProgress creates progress with first-contact defaults.
func NewUserProgress(userID, chatID int64) *UserProgress {
	return &UserProgress{
		UserID:   userID,
		ChatID:   chatID,
		Position: 1,
	}
}

// State derives the explicit session state.
func (p *UserProgress) State() SessionState {
	switch {
	case p.Level == nil:
		return StateNoLevel
	case p.Awaiting:
		return StateAwaitingAnswer
	case p.ExpectedText != "":
		return StateAnswered
	default:
		return StateLevelSelected
	}
}

// ProgressUpdate is a partial update of UserProgress.
// Nil fields are left unchanged on an existing row and take defaults on creation.
type ProgressUpdate struct {
	Level        *Level
	Position     *int
	Awaiting     *bool
	CorrectCount *int
	ExpectedText *string
}

// Apply writes the non-nil fields of u into p.
func (u ProgressUpdate) Apply(p *UserProgress) {
	if u.Level != nil {
		l := *u.Level
		p.Level = &l
	}
	if u.Position != nil {
		p.Position = *u.Position
	}
	if u.Awaiting != nil {
		p.Awaiting = *u.Awaiting
	}
	if u.CorrectCount != nil {
		p.CorrectCount = *u.CorrectCount
	}
	if u.ExpectedText != nil {
		p.ExpectedText = *u.ExpectedText
	}
}

// Ptr returns a pointer to v. It keeps ProgressUpdate literals short.
func Ptr[T any](v T) *T {
	return &v
}
