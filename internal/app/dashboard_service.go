package app

import (
	"context"

	"peco-service/internal/domain"
)

// DashboardService aggregates a learner's progress across features.
type DashboardService struct {
	stats       *StatsService
	flashcards  *FlashcardService
	challenges  *ChallengeService
	leaderboard *Leaderboard
}

func NewDashboardService(stats *StatsService, flashcards *FlashcardService, challenges *ChallengeService, leaderboard *Leaderboard) *DashboardService {
	return &DashboardService{stats: stats, flashcards: flashcards, challenges: challenges, leaderboard: leaderboard}
}

// Summary builds the dashboard for user. Rank is 0 until the user has scored.
func (s *DashboardService) Summary(ctx context.Context, user domain.User) (domain.Dashboard, error) {
	stats, err := s.stats.Get(ctx, user.ID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	studied, err := s.flashcards.Studied(ctx, user.ID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	started, completed, err := s.challenges.Counts(ctx, user.ID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{
		User:                user,
		Stats:               stats,
		StudiedCards:        len(studied),
		ChallengesStarted:   started,
		ChallengesCompleted: completed,
		Rank:                s.leaderboard.Rank(user.ID),
	}, nil
}

// Leaderboard returns the current standings.
func (s *DashboardService) Leaderboard() domain.Leaderboard {
	return s.leaderboard.Snapshot()
}
