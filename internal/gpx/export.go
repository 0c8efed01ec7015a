// Package gpx renders a recorded path as a GPX 1.1 document and builds the
// plain-text share summary.
package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"backend-ihiker/internal/recording"
)

// ErrEmptyPath is returned when there is nothing to export.
var ErrEmptyPath = errors.New("path is empty")

// Build creates a single-track, single-segment document with points in path
// order. exportedAt stamps the metadata only.
func Build(name string, path []recording.TrackPoint, exportedAt time.Time) (*GPX, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	seg := TrackSegment{Points: make([]Point, 0, len(path))}
	for _, p := range path {
		seg.Points = append(seg.Points, Point{Lat: p.Lat, Lon: p.Lng, Time: p.Timestamp.UTC()})
	}
	return &GPX{
		Version:  Version,
		Creator:  Creator,
		XMLNS:    Namespace,
		Metadata: Metadata{Name: "iHiker Track", Time: exportedAt.UTC()},
		Tracks:   []Track{{Name: name, Segments: []TrackSegment{seg}}},
	}, nil
}

func (g *GPX) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("encode gpx: %w", err)
	}
	return encoder.Close()
}

// TrackName is the default name given to a track started at t.
func TrackName(t time.Time) string {
	return "Hike " + t.Format("2006-01-02 15:04")
}

// ShareText summarizes a session for sharing.
func ShareText(distanceM float64, elapsed time.Duration) string {
	return fmt.Sprintf("I just finished a hike on iHiker!\nDistance: %.2f km\nTime: %s\nCome hike with me!",
		distanceM/1000, shareDuration(elapsed))
}

func shareDuration(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
