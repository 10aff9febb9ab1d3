package game

import "time"

// Room/door layout constants. The question bank is a flat array whose index
// is the global door index; room r (1-based) owns doors [(r-1)*5, (r-1)*5+5).
const (
	RoomCount    = 10
	DoorsPerRoom = 5
	DoorCount    = RoomCount * DoorsPerRoom
)

// Scoring constants.
const (
	ScoreCorrect     = 5
	ScoreTrapPenalty = -5
)

// Door kinds recorded in the answer log.
const (
	DoorKindTrap   = "trap"
	DoorKindNormal = "normal"
)

// Static identity stamped into exported sessions.
const (
	GameName = "Fragment Forge"
	Tagline  = "Where the first piece of the ultimate code is shaped."
)

// Question is a single read-only bank entry. Its position in the bank IS the
// global door index; no other field maps a door to a question.
type Question struct {
	ID           int      `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	IsTrap       bool     `json:"isTrap"`
}

// AnswerRecord is one append-only answer log entry. Prompt, options and
// correctIndex are snapshots taken at answer time, not live bank references.
// JSON field names match the browser client's persisted/exported format.
type AnswerRecord struct {
	Room          int       `json:"room"`
	Door          int       `json:"door"`
	GlobalIndex   int       `json:"doorGlobalIndex"`
	QuestionID    int       `json:"questionId"`
	Prompt        string    `json:"prompt"`
	Options       []string  `json:"options"`
	CorrectIndex  int       `json:"correctIndex"`
	SelectedIndex int       `json:"selectedIndex"`
	Correct       bool      `json:"correct"`
	DoorKind      string    `json:"doorType"`
	ScoreDelta    int       `json:"deltaScore"`
	AnsweredAt    time.Time `json:"answeredAt"`
}

// Session is the single mutable aggregate for one team's playthrough.
// A nil StartTime means the session has not started; a nil EndTime means it
// is still in progress. Score may go negative.
type Session struct {
	TeamName        string         `json:"teamName"`
	StartTime       *time.Time     `json:"startTime,omitempty"`
	EndTime         *time.Time     `json:"endTime,omitempty"`
	Score           int            `json:"score"`
	Answers         []AnswerRecord `json:"answers"`
	AnsweredDoorIDs []int          `json:"answeredDoorIds"`
	MaxRoomUnlocked int            `json:"maxRoomUnlocked"`
}

// NewSession returns the empty default session: no team name, not started,
// no rooms unlocked.
func NewSession() *Session {
	return &Session{
		Answers:         []AnswerRecord{},
		AnsweredDoorIDs: []int{},
	}
}

// Export is the downloadable results document produced from a session.
type Export struct {
	GameName   string         `json:"gameName"`
	Tagline    string         `json:"tagline"`
	TeamName   string         `json:"teamName"`
	StartTime  *time.Time     `json:"startTime"`
	EndTime    *time.Time     `json:"endTime"`
	TotalScore int            `json:"totalScore"`
	Answers    []AnswerRecord `json:"answers"`
}
