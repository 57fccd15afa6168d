package app

import (
	"sort"
	"sync"
	"time"

	"peco-service/internal/domain"
)

// Leaderboard ranks learners by accumulated points.
type Leaderboard struct {
	now          func() time.Time
	mu           sync.RWMutex
	participants map[string]*domain.Participant
}

func NewLeaderboard() *Leaderboard {
	return NewLeaderboardWithClock(time.Now)
}

// NewLeaderboardWithClock allows deterministic timestamps in tests.
func NewLeaderboardWithClock(now func() time.Time) *Leaderboard {
	return &Leaderboard{
		now:          now,
		participants: make(map[string]*domain.Participant),
	}
}

// Set records the current score of a learner.
func (l *Leaderboard) Set(userID, displayName string, score int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if p, ok := l.participants[userID]; ok {
		if displayName != "" {
			p.DisplayName = displayName
		}
		if p.Score != score {
			p.Score = score
			p.LastUpdated = now
		}
		return
	}
	l.participants[userID] = &domain.Participant{
		UserID:      userID,
		DisplayName: displayName,
		Score:       score,
		LastUpdated: now,
	}
}

// Rank returns the 1-based position of the user, or 0 when absent.
func (l *Leaderboard) Rank(userID string) int {
	for _, e := range l.Snapshot().Entries {
		if e.UserID == userID {
			return e.Rank
		}
	}
	return 0
}

// Snapshot orders by score desc, then whoever reached the score first, then name.
func (l *Leaderboard) Snapshot() domain.Leaderboard {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(l.participants))
	for _, p := range l.participants {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		pi := l.participants[entries[i].UserID]
		pj := l.participants[entries[j].UserID]
		if !pi.LastUpdated.Equal(pj.LastUpdated) {
			return pi.LastUpdated.Before(pj.LastUpdated)
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{Entries: entries, UpdatedAt: l.now()}
}
