package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-ihiker/internal/achievement"
	"backend-ihiker/internal/auth"
	"backend-ihiker/internal/db"
	"backend-ihiker/internal/recording"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNoSession is returned when the requested hike does not exist for the user.
var ErrNoSession = errors.New("session not found")

// Service persists completed hikes and their paths.
type Service struct {
	db           db.Querier
	achievements *achievement.Service
	now          func() time.Time
}

func NewService(db db.Querier, achievements *achievement.Service) *Service {
	return &Service{db: db, achievements: achievements, now: time.Now}
}

// InsertSession stores t and returns its id. Inserting the same id twice is
// harmless so a failed save can be retried.
func (s *Service) InsertSession(ctx context.Context, t Track) (Track, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var weatherJSON []byte
	if t.Weather != nil {
		var err error
		if weatherJSON, err = json.Marshal(t.Weather); err != nil {
			return Track{}, err
		}
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO hiking_tracks (id, user_id, name, total_distance, total_time, avg_speed, max_speed, start_time, end_time, weather)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING created_at
	`, t.ID, t.UserID, t.Name, t.TotalDistanceM, t.TotalTimeSec, t.AvgSpeedMps, t.MaxSpeedMps, t.StartTime, t.EndTime, weatherJSON)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Track{}, fmt.Errorf("insert session: %w", err)
	}
	return t, nil
}

// InsertPoints stores the path in one statement. Points already stored for the
// track are skipped.
func (s *Service) InsertPoints(ctx context.Context, trackID string, points []recording.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}
	seqs := make([]int32, len(points))
	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	times := make([]time.Time, len(points))
	for i, p := range points {
		seqs[i] = int32(p.Sequence)
		lats[i] = p.Lat
		lngs[i] = p.Lng
		times[i] = p.Timestamp
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO track_points (track_id, sequence, latitude, longitude, recorded_at)
		SELECT $1, * FROM unnest($2::int[], $3::float8[], $4::float8[], $5::timestamptz[])
		ON CONFLICT (track_id, sequence) DO NOTHING
	`, trackID, seqs, lats, lngs, times)
	if err != nil {
		return fmt.Errorf("insert points: %w", err)
	}
	return nil
}

const trackColumns = `id, user_id, name, total_distance, total_time, avg_speed, max_speed, start_time, end_time, weather, created_at`

func scanTrack(row pgx.Row) (Track, error) {
	var t Track
	var endTime *time.Time
	var weatherJSON []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.TotalDistanceM, &t.TotalTimeSec, &t.AvgSpeedMps, &t.MaxSpeedMps,
		&t.StartTime, &endTime, &weatherJSON, &t.CreatedAt); err != nil {
		return Track{}, err
	}
	if endTime != nil {
		t.EndTime = *endTime
	}
	if len(weatherJSON) > 0 {
		if err := json.Unmarshal(weatherJSON, &t.Weather); err != nil {
			return Track{}, err
		}
	}
	return t, nil
}

// ListSessions returns every hike of userID, oldest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]Track, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+trackColumns+`
		FROM hiking_tracks WHERE user_id=$1
		ORDER BY start_time
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *Service) GetSession(ctx context.Context, userID, id string) (Track, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+trackColumns+`
		FROM hiking_tracks WHERE id=$1 AND user_id=$2
	`, id, userID)
	t, err := scanTrack(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Track{}, ErrNoSession
	}
	return t, err
}

func (s *Service) ListPoints(ctx context.Context, trackID string) ([]recording.TrackPoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sequence, latitude, longitude, recorded_at
		FROM track_points WHERE track_id=$1
		ORDER BY sequence
	`, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []recording.TrackPoint{}
	for rows.Next() {
		var p recording.TrackPoint
		if err := rows.Scan(&p.Sequence, &p.Lat, &p.Lng, &p.Timestamp); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	tracks, err := s.ListSessions(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(tracks), nil
}

// Save persists a completed hike and unlocks whatever it earned. It stops at
// the first failure; the caller keeps the session and may call Save again
// with the same track id.
func (s *Service) Save(ctx context.Context, t Track, path []recording.TrackPoint) (SaveResult, error) {
	if t.UserID == "" {
		return SaveResult{}, fmt.Errorf("save: %w", auth.ErrNoUser)
	}
	if len(path) == 0 {
		return SaveResult{}, ErrEmptySession
	}
	saved, err := s.InsertSession(ctx, t)
	if err != nil {
		return SaveResult{}, err
	}
	if err := s.InsertPoints(ctx, saved.ID, path); err != nil {
		return SaveResult{}, err
	}
	result := SaveResult{Track: saved, Unlocked: []achievement.Definition{}}
	if s.achievements == nil {
		return result, nil
	}

	history, err := s.ListSessions(ctx, t.UserID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("list history: %w", err)
	}
	records := make([]achievement.Record, 0, len(history))
	for _, h := range history {
		records = append(records, h.record())
	}
	unlocked, err := s.achievements.UnlockedIDs(ctx, t.UserID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("load achievements: %w", err)
	}
	earned := achievement.Evaluate(saved.record(), records, unlocked)
	if err := s.achievements.Unlock(ctx, t.UserID, earned, s.now()); err != nil {
		return SaveResult{}, fmt.Errorf("unlock achievements: %w", err)
	}
	if earned != nil {
		result.Unlocked = earned
	}
	return result, nil
}
