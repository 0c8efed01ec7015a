package recording

import (
	"fmt"
	"time"
)

const announceEveryMinutes = 10

type AnnouncementKind string

const (
	AnnounceStart    AnnouncementKind = "start"
	AnnouncePause    AnnouncementKind = "pause"
	AnnounceResume   AnnouncementKind = "resume"
	AnnounceStop     AnnouncementKind = "stop"
	AnnounceDistance AnnouncementKind = "distance"
	AnnounceTime     AnnouncementKind = "time"
)

// Announcement is a short spoken-style message for the presentation layer.
type Announcement struct {
	Kind       AnnouncementKind `json:"kind"`
	Text       string           `json:"text"`
	DistanceKm float64          `json:"distance_km,omitempty"`
	Minutes    int              `json:"minutes,omitempty"`
}

type milestones struct {
	lastKm      int
	lastMinutes int
}

func (m *milestones) reset() {
	*m = milestones{}
}

// check returns at most one distance and one time announcement. Only the
// latest whole kilometre is announced when several are crossed at once.
func (m *milestones) check(distanceM float64, elapsed time.Duration) []Announcement {
	var out []Announcement
	km := int(distanceM / 1000)
	if km > m.lastKm {
		m.lastKm = km
		out = append(out, Announcement{
			Kind:       AnnounceDistance,
			Text:       fmt.Sprintf("%d km completed", km),
			DistanceKm: float64(km),
		})
	}
	minutes := int(elapsed / time.Minute)
	if minutes > 0 && minutes%announceEveryMinutes == 0 && minutes > m.lastMinutes {
		m.lastMinutes = minutes
		out = append(out, Announcement{
			Kind:    AnnounceTime,
			Text:    fmt.Sprintf("%d minutes elapsed", minutes),
			Minutes: minutes,
		})
	}
	return out
}

func commandAnnouncement(kind AnnouncementKind) Announcement {
	text := map[AnnouncementKind]string{
		AnnounceStart:  "Recording started",
		AnnouncePause:  "Recording paused",
		AnnounceResume: "Recording resumed",
	}[kind]
	return Announcement{Kind: kind, Text: text}
}

func stopAnnouncement(distanceM float64, elapsed time.Duration) Announcement {
	km := distanceM / 1000
	minutes := int(elapsed / time.Minute)
	return Announcement{
		Kind:       AnnounceStop,
		Text:       fmt.Sprintf("Finished: %.1f km in %d minutes", km, minutes),
		DistanceKm: km,
		Minutes:    minutes,
	}
}
