package tracking

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func withUser(c *fiber.Ctx) error {
	if id := c.Get("X-User"); id != "" {
		c.Locals("user_id", id)
	}
	return c.Next()
}

func newTestApp(svc *Service, mgr *Manager) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, svc, mgr, withUser)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-User", "user-1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestRecorderHandlersFlow(t *testing.T) {
	saver := &fakeSaver{}
	mgr, clock, sched := newTestManager(saver, nil, nil)
	app := newTestApp(NewService(nil, nil), mgr)

	resp := call(t, app, http.MethodPost, "/recorder/start", `{"fixes":[{"lat":46.5,"lng":7.25}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status %d", resp.StatusCode)
	}
	var started commandResponse
	_ = json.NewDecoder(resp.Body).Decode(&started)
	if !started.Changed || started.State != "recording" {
		t.Fatalf("unexpected start response %+v", started)
	}

	fix, _ := json.Marshal(north(trailhead, 40))
	resp = call(t, app, http.MethodPost, "/recorder/fixes", string(fix))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("fix status %d", resp.StatusCode)
	}
	clock.advance(time.Second)
	waitFor(t, "accepted fix", func() bool {
		sched.fire()
		return mgr.View("user-1").Snapshot.PointCount == 1
	})

	resp = call(t, app, http.MethodGet, "/recorder", "")
	var view View
	_ = json.NewDecoder(resp.Body).Decode(&view)
	if view.Display.DistanceKm != "0.04" || view.Display.Elapsed != "00:00:01" {
		t.Fatalf("unexpected view %+v", view)
	}

	if resp = call(t, app, http.MethodPost, "/recorder/pause", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("pause status %d", resp.StatusCode)
	}
	resp = call(t, app, http.MethodPost, "/recorder/pause", "")
	var again commandResponse
	_ = json.NewDecoder(resp.Body).Decode(&again)
	if again.Changed || again.State != "paused" {
		t.Fatalf("second pause should be a no-op: %+v", again)
	}
	if resp = call(t, app, http.MethodPost, "/recorder/resume", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("resume status %d", resp.StatusCode)
	}

	resp = call(t, app, http.MethodPost, "/recorder/stop", "")
	var stopped StopResult
	_ = json.NewDecoder(resp.Body).Decode(&stopped)
	if stopped.State != "stopped" || stopped.Saved == nil || stopped.Session == nil {
		t.Fatalf("unexpected stop response %+v", stopped)
	}

	resp = call(t, app, http.MethodGet, "/recorder/export.gpx", "")
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/gpx+xml" {
		t.Fatalf("export status %d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), `<trkpt lat=`) {
		t.Fatalf("unexpected gpx %s", raw)
	}

	resp = call(t, app, http.MethodGet, "/recorder/share", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("share status %d", resp.StatusCode)
	}

	if resp = call(t, app, http.MethodPost, "/recorder/save", ""); resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status %d", resp.StatusCode)
	}
	if len(saver.tracks) != 2 || saver.tracks[0].ID != saver.tracks[1].ID {
		t.Fatalf("save retry should reuse the track id")
	}
}

func TestRecorderHandlersPreconditions(t *testing.T) {
	mgr, _, _ := newTestManager(&fakeSaver{}, nil, nil)
	app := newTestApp(NewService(nil, nil), mgr)

	req := httptest.NewRequest(http.MethodGet, "/recorder", nil)
	if resp, _ := app.Test(req); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without user")
	}

	cases := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodPost, "/recorder/save", "", http.StatusConflict},
		{http.MethodGet, "/recorder/export.gpx", "", http.StatusBadRequest},
		{http.MethodGet, "/recorder/share", "", http.StatusBadRequest},
		{http.MethodPost, "/recorder/fixes", `{"lat":46.5,"lng":7.25}`, http.StatusConflict},
		{http.MethodPost, "/recorder/fixes", `{"lat":146.5,"lng":7.25}`, http.StatusBadRequest},
		{http.MethodPost, "/recorder/fixes", `{`, http.StatusBadRequest},
		{http.MethodPost, "/recorder/start", `{`, http.StatusBadRequest},
		{http.MethodPost, "/recorder/fix-errors", `{"reason":"denied"}`, http.StatusAccepted},
		{http.MethodPost, "/recorder/stop", "", http.StatusOK},
	}
	for _, tc := range cases {
		resp := call(t, app, tc.method, tc.path, tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, resp.StatusCode)
		}
	}
}

func TestHistoryHandlers(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	mgr, _, _ := newTestManager(&fakeSaver{}, nil, nil)
	app := newTestApp(NewService(mock, nil), mgr)

	mock.ExpectQuery(`FROM hiking_tracks WHERE user_id=\$1`).
		WithArgs("user-1").
		WillReturnRows(trackRows("user-1", 4000))
	resp := call(t, app, http.MethodGet, "/sessions", "")
	var tracks []Track
	_ = json.NewDecoder(resp.Body).Decode(&tracks)
	if resp.StatusCode != http.StatusOK || len(tracks) != 1 {
		t.Fatalf("sessions: %d %+v", resp.StatusCode, tracks)
	}

	const trackID = "3f1c2a4e-8b7d-4c1a-9e2f-5a6b7c8d9e01"
	const missingID = "0b6e4f1d-2c3a-4d5e-8f90-a1b2c3d4e5f6"

	end := t0.Add(time.Hour)
	mock.ExpectQuery(`WHERE id=\$1 AND user_id=\$2`).
		WithArgs(trackID, "user-1").
		WillReturnRows(pgxmock.NewRows(trackCols).AddRow(trackID, "user-1", "Hike 2025-06-01 08:00", 100.0, int64(60), 1.6, 2.0, t0, &end, nil, end))
	mock.ExpectQuery(`FROM track_points WHERE track_id=\$1`).
		WithArgs(trackID).
		WillReturnRows(pgxmock.NewRows([]string{"sequence", "latitude", "longitude", "recorded_at"}).AddRow(0, 46.5, 7.25, t0))
	resp = call(t, app, http.MethodGet, "/sessions/"+trackID+"/export.gpx", "")
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "<name>Hike 2025-06-01 08:00</name>") {
		t.Fatalf("session export: %d %s", resp.StatusCode, raw)
	}

	mock.ExpectQuery(`WHERE id=\$1 AND user_id=\$2`).
		WithArgs(missingID, "user-1").
		WillReturnRows(pgxmock.NewRows(trackCols))
	if resp = call(t, app, http.MethodGet, "/sessions/"+missingID+"/points", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}

	for _, path := range []string{"/sessions/not-a-uuid/points", "/sessions/track-1/export.gpx"} {
		if resp = call(t, app, http.MethodGet, path, ""); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected not found, got %d", path, resp.StatusCode)
		}
	}

	mock.ExpectQuery(`FROM hiking_tracks WHERE user_id=\$1`).
		WithArgs("user-1").
		WillReturnError(errTrack)
	if resp = call(t, app, http.MethodGet, "/stats", ""); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected server error, got %d", resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
