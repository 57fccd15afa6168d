package domain

import "time"

// QuestionType selects how an answer is evaluated.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionImageChoice  QuestionType = "image-choice"
	QuestionDragMatch    QuestionType = "drag-match"
)

// Option represents a selectable choice for single- and image-choice questions.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// DragItem is a draggable element of a drag-match question.
type DragItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DropZone is a target of a drag-match question.
type DropZone struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question is immutable once loaded. The answer key lives in CorrectChoice or CorrectMatches
// depending on Type.
type Question struct {
	ID             string            `json:"id"`
	Type           QuestionType      `json:"type"`
	Prompt         string            `json:"prompt"`
	Hint           string            `json:"hint,omitempty"`
	Media          string            `json:"media,omitempty"`
	Options        []Option          `json:"options,omitempty"`
	Items          []DragItem        `json:"items,omitempty"`
	Zones          []DropZone        `json:"zones,omitempty"`
	CorrectChoice  string            `json:"correctChoice,omitempty"`
	CorrectMatches map[string]string `json:"correctMatches,omitempty"` // drop zone id -> item id
	Points         int               `json:"points"`
	Explanation    string            `json:"explanation,omitempty"`
}

// PublicQuestion is the client-facing view of a question without its answer key.
type PublicQuestion struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"prompt"`
	Media   string       `json:"media,omitempty"`
	Options []Option     `json:"options,omitempty"`
	Items   []DragItem   `json:"items,omitempty"`
	Zones   []DropZone   `json:"zones,omitempty"`
	Points  int          `json:"points"`
}

// Public strips the answer key and explanation.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:      q.ID,
		Type:    q.Type,
		Prompt:  q.Prompt,
		Media:   q.Media,
		Options: q.Options,
		Items:   q.Items,
		Zones:   q.Zones,
		Points:  q.Points,
	}
}

// DefaultTimeLimit is the quiz time budget in seconds when a quiz does not set one.
const DefaultTimeLimit = 900

// Quiz is an ordered question bank.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TimeLimit   int        `json:"timeLimit"` // seconds
	Questions   []Question `json:"questions"`
}

// QuizSummary is what quiz listings return.
type QuizSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	TimeLimit     int    `json:"timeLimit"`
	QuestionCount int    `json:"questionCount"`
}

// Answer is a submitted response. The zero value means "no answer".
type Answer struct {
	ChoiceID string            `json:"choiceId,omitempty"`
	Matches  map[string]string `json:"matches,omitempty"`
}

// IsZero reports whether nothing was submitted.
func (a Answer) IsZero() bool {
	return a.ChoiceID == "" && len(a.Matches) == 0
}

// Clone returns a deep copy so callers cannot mutate recorded answers.
func (a Answer) Clone() Answer {
	out := Answer{ChoiceID: a.ChoiceID}
	if a.Matches != nil {
		out.Matches = make(map[string]string, len(a.Matches))
		for k, v := range a.Matches {
			out.Matches[k] = v
		}
	}
	return out
}

// Feedback is returned after an answer is recorded.
type Feedback struct {
	QuestionID    string `json:"questionId"`
	QuestionIndex int    `json:"questionIndex"`
	Correct       bool   `json:"correct"`
	Awarded       int    `json:"awarded"`
	Streak        int    `json:"streak"`
	TotalPoints   int    `json:"totalPoints"`
	Explanation   string `json:"explanation,omitempty"`
}

// SessionState is a snapshot of a quiz session.
type SessionState struct {
	SessionID     string            `json:"sessionId"`
	QuizID        string            `json:"quizId"`
	UserID        string            `json:"userId"`
	CurrentIndex  int               `json:"currentIndex"`
	TotalQuestion int               `json:"totalQuestions"`
	Question      *PublicQuestion   `json:"question,omitempty"`
	Answers       map[string]Answer `json:"answers"`
	Points        int               `json:"points"`
	Streak        int               `json:"streak"`
	BestStreak    int               `json:"bestStreak"`
	Remaining     int               `json:"remainingSeconds"`
	FeedbackShown bool              `json:"feedbackShown"`
	Terminal      bool              `json:"terminal"`
	StartedAt     time.Time         `json:"startedAt"`
	FinishedAt    time.Time         `json:"finishedAt,omitempty"`
}

// Badge is an achievement derived from a result.
type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Result is the immutable outcome of a terminal session.
type Result struct {
	SessionID      string  `json:"sessionId"`
	QuizID         string  `json:"quizId"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	PointsEarned   int     `json:"pointsEarned"`
	TimeSpent      int     `json:"timeSpent"` // seconds
	BestStreak     int     `json:"bestStreak"`
	Percentage     int     `json:"percentage"`
	Message        string  `json:"message"`
	Badges         []Badge `json:"badges"`
}

// ReviewItem pairs a question with what the user submitted.
type ReviewItem struct {
	Question    PublicQuestion `json:"question"`
	Answer      *Answer        `json:"answer,omitempty"`
	Correct     bool           `json:"correct"`
	Explanation string         `json:"explanation,omitempty"`
}

// Participant represents a learner on the leaderboard.
type Participant struct {
	UserID      string
	DisplayName string
	Score       int
	LastUpdated time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
