package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
)

// StatsService owns the userStats document and mirrors points onto the leaderboard.
type StatsService struct {
	store       Store
	leaderboard *Leaderboard
	log         logrus.FieldLogger
	mu          sync.Mutex
}

func NewStatsService(store Store, leaderboard *Leaderboard, log logrus.FieldLogger) *StatsService {
	return &StatsService{store: store, leaderboard: leaderboard, log: log}
}

// Get returns the stored stats, or zero stats for a new user.
func (s *StatsService) Get(ctx context.Context, userID string) (domain.UserStats, error) {
	var stats domain.UserStats
	if _, err := s.store.Load(ctx, domain.UserKey(userID, domain.KeyUserStats), &stats); err != nil {
		return domain.UserStats{}, fmt.Errorf("load stats: %w", err)
	}
	if stats.Achievements == nil {
		stats.Achievements = []string{}
	}
	return stats, nil
}

// RecordQuiz credits a finished quiz: points earned and any badges not held yet.
func (s *StatsService) RecordQuiz(ctx context.Context, userID string, result domain.Result) (domain.UserStats, error) {
	return s.update(ctx, userID, func(stats *domain.UserStats) {
		stats.Points += result.PointsEarned
		for _, b := range result.Badges {
			if !contains(stats.Achievements, b.Name) {
				stats.Achievements = append(stats.Achievements, b.Name)
			}
		}
	})
}

// RecordChallenge credits a submitted challenge and extends the daily streak.
func (s *StatsService) RecordChallenge(ctx context.Context, userID string, points int, reward string) (domain.UserStats, error) {
	return s.update(ctx, userID, func(stats *domain.UserStats) {
		stats.Points += points
		stats.CompletedChallenges++
		stats.Streak++
		if reward != "" && !contains(stats.Achievements, reward) {
			stats.Achievements = append(stats.Achievements, reward)
		}
	})
}

func (s *StatsService) update(ctx context.Context, userID string, apply func(*domain.UserStats)) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.Get(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	apply(&stats)
	if err := s.store.Save(ctx, domain.UserKey(userID, domain.KeyUserStats), stats); err != nil {
		return domain.UserStats{}, fmt.Errorf("save stats: %w", err)
	}
	if s.leaderboard != nil {
		s.leaderboard.Set(userID, s.displayName(ctx, userID), stats.Points)
	}
	s.log.WithFields(logrus.Fields{"user": userID, "points": stats.Points}).Debug("stats updated")
	return stats, nil
}

func (s *StatsService) displayName(ctx context.Context, userID string) string {
	var rec domain.AuthRecord
	if found, err := s.store.Load(ctx, domain.UserKey(userID, domain.KeyAuth), &rec); err == nil && found && rec.User.Name != "" {
		return rec.User.Name
	}
	return userID
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
