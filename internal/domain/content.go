package domain

import "time"

// Lesson statuses.
const (
	LessonDraft     = "draft"
	LessonPublished = "published"
	LessonArchived  = "archived"
)

// Lesson is admin-managed learning content.
type Lesson struct {
	ID            string    `json:"id" bun:"id,pk"`
	Title         string    `json:"title" validate:"required,max=200" bun:"title,notnull"`
	Description   string    `json:"description" validate:"max=2000" bun:"description"`
	Category      string    `json:"category" validate:"required" bun:"category,notnull"`
	Difficulty    string    `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced" bun:"difficulty"`
	Status        string    `json:"status" validate:"omitempty,oneof=draft published archived" bun:"status,notnull"`
	LastModified  time.Time `json:"lastModified" bun:"last_modified,notnull"`
	Content       string    `json:"content" bun:"content"`
	EstimatedTime int       `json:"estimatedTime" validate:"gte=0" bun:"estimated_time"`
	Tags          []string  `json:"tags" bun:"tags,array"`
	Prerequisites []string  `json:"prerequisites" bun:"prerequisites,array"`
}

// LessonFilter narrows lesson listings. "all" or empty matches anything.
type LessonFilter struct {
	Search     string
	Category   string
	Status     string
	Difficulty string
	DateFrom   time.Time
	DateTo     time.Time
}

// SortConfig orders lesson listings.
type SortConfig struct {
	Key       string `json:"key"`
	Direction string `json:"direction"` // asc|desc
}

// LessonStats summarizes the content library.
type LessonStats struct {
	Total      int            `json:"totalLessons"`
	Published  int            `json:"published"`
	Draft      int            `json:"draft"`
	Archived   int            `json:"archived"`
	Categories map[string]int `json:"categories"`
}

// ChallengeStep is one unit of work inside a challenge.
type ChallengeStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"` // action|photo|reflection
	Required    bool   `json:"required"`
	MaxPhotos   int    `json:"maxPhotos,omitempty"`
	Points      int    `json:"points"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Challenge is a daily eco-challenge.
type Challenge struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	Difficulty  string          `json:"difficulty"`
	Points      int             `json:"points"`
	BonusReward string          `json:"bonusReward,omitempty"`
	Type        string          `json:"type"`
	Steps       []ChallengeStep `json:"steps,omitempty"`
	Status      string          `json:"status"` // available|upcoming|completed
	StartDate   time.Time       `json:"startDate,omitempty"`
	EndTime     time.Time       `json:"endTime,omitempty"`
}

// RequiredSteps counts the steps that must be completed before submitting.
func (c Challenge) RequiredSteps() int {
	n := 0
	for _, s := range c.Steps {
		if s.Required {
			n++
		}
	}
	return n
}

// PhotoLimit is the total number of photos the challenge accepts.
func (c Challenge) PhotoLimit() int {
	n := 0
	for _, s := range c.Steps {
		if s.Type == "photo" {
			n += s.MaxPhotos
		}
	}
	return n
}

// Photo is an uploaded piece of challenge evidence.
type Photo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	URL       string    `json:"url" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// ChallengeProgress is persisted per user and challenge.
type ChallengeProgress struct {
	Started        bool      `json:"started"`
	CurrentStep    int       `json:"currentStep"`
	CompletedSteps int       `json:"completedSteps"`
	Photos         []Photo   `json:"photos"`
	Reflection     string    `json:"reflection"`
	Completed      bool      `json:"completed"`
	CompletedAt    time.Time `json:"completedAt,omitempty"`
	PointsEarned   int       `json:"pointsEarned"`
	StartedAt      time.Time `json:"startedAt"`
}

// UserStats is the per-user gamification counter set.
type UserStats struct {
	Points              int      `json:"points"`
	Streak              int      `json:"streak"`
	CompletedChallenges int      `json:"completedChallenges"`
	Achievements        []string `json:"achievements"`
}

// Flashcard is a revision card.
type Flashcard struct {
	ID              string     `json:"id"`
	CardNumber      int        `json:"cardNumber"`
	Topic           string     `json:"topic"`
	Question        string     `json:"question"`
	Answer          string     `json:"answer"`
	Explanation     string     `json:"explanation,omitempty"`
	QuestionImage   string     `json:"questionImage,omitempty"`
	AnswerImage     string     `json:"answerImage,omitempty"`
	Difficulty      string     `json:"difficulty"`      // easy|medium|hard
	ReviewFrequency string     `json:"reviewFrequency"` // new|review|mastered
	HasAudio        bool       `json:"hasAudio"`
	LastReviewed    *time.Time `json:"lastReviewed,omitempty"`
	TimesReviewed   int        `json:"timesReviewed"`
}

// FlashcardFilter narrows the deck. "all" or empty matches anything.
type FlashcardFilter struct {
	Topic           string
	Difficulty      string
	ReviewFrequency string
	Shuffle         bool
}

// Roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User identifies a logged-in person.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AuthRecord is the stored login. Expiry is epoch milliseconds.
type AuthRecord struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Expiry int64  `json:"expiry"`
	User   User   `json:"user"`
}

// Dashboard aggregates a learner's progress.
type Dashboard struct {
	User                User      `json:"user"`
	Stats               UserStats `json:"stats"`
	StudiedCards        int       `json:"studiedCards"`
	ChallengesStarted   int       `json:"challengesStarted"`
	ChallengesCompleted int       `json:"challengesCompleted"`
	Rank                int       `json:"rank"`
}

// Store keys for per-user state.
const (
	KeyAuth         = "auth"
	KeyUserProgress = "userProgress"
	KeyUserStats    = "userStats"
	KeyStudiedCards = "studiedCards"
)

// UserKey scopes a store key to a user.
func UserKey(userID, key string) string {
	return "user:" + userID + ":" + key
}
