package gpx

import (
	"encoding/xml"
	"time"
)

const (
	Version   = "1.1"
	Creator   = "iHiker"
	Namespace = "http://www.topografix.com/GPX/1/1"
)

// Point is one trkpt. Time is always the fix's own capture time.
type Point struct {
	Lat  float64   `xml:"lat,attr"`
	Lon  float64   `xml:"lon,attr"`
	Time time.Time `xml:"time"`
}

type TrackSegment struct {
	Points []Point `xml:"trkpt"`
}

type Track struct {
	Name     string         `xml:"name,omitempty"`
	Segments []TrackSegment `xml:"trkseg"`
}

type Metadata struct {
	Name string    `xml:"name,omitempty"`
	Time time.Time `xml:"time"`
}

type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	XMLNS   string   `xml:"xmlns,attr"`

	Metadata Metadata `xml:"metadata"`
	Tracks   []Track  `xml:"trk"`
}
