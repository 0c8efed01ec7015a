package achievement

import (
	"context"
	"time"

	"backend-ihiker/internal/db"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var unlockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ihiker_achievements_unlocked_total",
	Help: "Achievements unlocked, by achievement id.",
}, []string{"achievement"})

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Unlocked returns the user's earned achievement ids with their unlock time.
func (s *Service) Unlocked(ctx context.Context, userID string) (map[string]time.Time, error) {
	rows, err := s.db.Query(ctx, `
		SELECT achievement_id, unlocked_at
		FROM user_achievements WHERE user_id=$1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		out[id] = at
	}
	return out, rows.Err()
}

// UnlockedIDs is Unlocked reduced to the set Evaluate expects.
func (s *Service) UnlockedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	unlocked, err := s.Unlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(unlocked))
	for id := range unlocked {
		ids[id] = true
	}
	return ids, nil
}

// Unlock records newly earned achievements. Unlocks are one-way; an id the
// user already holds keeps its original time.
func (s *Service) Unlock(ctx context.Context, userID string, defs []Definition, at time.Time) error {
	for _, d := range defs {
		tag, err := s.db.Exec(ctx, `
			INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
			VALUES ($1,$2,$3)
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, userID, d.ID, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			unlockedTotal.WithLabelValues(d.ID).Inc()
		}
	}
	return nil
}

// List returns the whole catalog with the user's unlock flags.
func (s *Service) List(ctx context.Context, userID string) ([]Achievement, error) {
	unlocked, err := s.Unlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs := Catalog()
	out := make([]Achievement, 0, len(defs))
	for _, d := range defs {
		a := Achievement{Definition: d}
		if at, ok := unlocked[d.ID]; ok {
			at := at
			a.Unlocked = true
			a.UnlockedAt = &at
		}
		out = append(out, a)
	}
	return out, nil
}
