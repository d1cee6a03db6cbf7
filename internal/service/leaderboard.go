package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
)

type ResultReader interface {
	FindResultsByEventID(ctx context.Context, eventID string) ([]domain.RankedResult, error)
}

type ProfileBatchReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error)
}

type LeaderboardService struct {
	events   EventReader
	results  ResultReader
	profiles ProfileBatchReader
	metrics  *metrics.Metrics
}

func NewLeaderboardService(events EventReader, results ResultReader, profiles ProfileBatchReader, m *metrics.Metrics) *LeaderboardService {
	return &LeaderboardService{
		events:   events,
		results:  results,
		profiles: profiles,
		metrics:  m,
	}
}

// Rank returns the top results of an event. Participants are labelled by display name
// or masked email; full emails are never returned.
func (s *LeaderboardService) Rank(ctx context.Context, eventCode string, limit int) ([]domain.LeaderboardEntry, error) {
	event, err := s.events.FindByCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, fmt.Errorf("s.events.FindByCode -> %w", err)
	}

	s.metrics.IncLeaderboardQueries()

	results, err := s.results.FindResultsByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("s.results.FindResultsByEventID -> %w", err)
	}

	ranked := domain.RankResults(results, limit)

	userIDs := make([]string, 0, len(ranked))
	seen := make(map[string]bool, len(ranked))
	for _, r := range ranked {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			userIDs = append(userIDs, r.UserID)
		}
	}

	profiles, err := s.profiles.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("s.profiles.FindByIDs -> %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		var label string
		if p, ok := profiles[r.UserID]; ok {
			label = domain.ParticipantLabel(&p)
		} else {
			label = domain.ParticipantLabel(nil)
		}

		entries = append(entries, domain.LeaderboardEntry{
			Rank:        i + 1,
			RunID:       r.RunID,
			UserID:      r.UserID,
			Participant: label,
			Score:       r.Score,
			PnL:         r.PnL,
			Sharpe:      r.Sharpe,
			MaxDrawdown: r.MaxDrawdown,
			WinRate:     r.WinRate,
			SubmittedAt: r.CreatedAt,
		})
	}

	return entries, nil
}
