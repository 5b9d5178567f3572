package models

import (
	"strings"
	"time"
	_ "time/tzdata" // Europe/Dublin must resolve in minimal containers
)

// Status of a docking station
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// ParseStatus matches OPEN/CLOSED case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusOpen):
		return StatusOpen, true
	case string(StatusClosed):
		return StatusClosed, true
	}
	return "", false
}

type Position struct {
	Latitude  float64
	Longitude float64
}

// Station is one bike-share dock location.
type Station struct {
	Number                int
	Name                  string
	Address               string
	Position              Position
	BikeStands            int
	AvailableBikes        int
	AvailableBikeStands   int
	Status                Status
	LastUpdateEpochMillis int64
}

// ID is the storage primary key, the string form of Number.
func (s Station) ID() string {
	return stationID(s.Number)
}

// Occupancy is the fraction of stands holding a bike, 0 when the station has no stands.
func (s Station) Occupancy() float64 {
	if s.BikeStands == 0 {
		return 0
	}
	return float64(s.AvailableBikes) / float64(s.BikeStands)
}

// LastUpdateLocal converts the epoch millis to Dublin local time.
func (s Station) LastUpdateLocal() time.Time {
	return time.UnixMilli(s.LastUpdateEpochMillis).In(dublin)
}

// Normalize enforces the station invariants in place:
// 0 <= AvailableBikes <= BikeStands, AvailableBikeStands derived, CLOSED when BikeStands == 0.
func (s *Station) Normalize() {
	if s.BikeStands < 0 {
		s.BikeStands = 0
	}
	if s.AvailableBikes < 0 {
		s.AvailableBikes = 0
	}
	if s.AvailableBikes > s.BikeStands {
		s.AvailableBikes = s.BikeStands
	}
	s.AvailableBikeStands = s.BikeStands - s.AvailableBikes

	if st, ok := ParseStatus(string(s.Status)); ok {
		s.Status = st
	} else {
		s.Status = StatusOpen
	}
	if s.BikeStands == 0 {
		s.Status = StatusClosed
	}
}

// Summary is the aggregate view over the full collection.
type Summary struct {
	TotalStations       int `json:"totalStations"`
	TotalBikeStands     int `json:"totalBikeStands"`
	TotalAvailableBikes int `json:"totalAvailableBikes"`
	OpenStations        int `json:"openStations"`
	ClosedStations      int `json:"closedStations"`
}

// Summarize recomputes the summary from scratch.
func Summarize(stations []Station) Summary {
	sum := Summary{TotalStations: len(stations)}
	for _, s := range stations {
		sum.TotalBikeStands += s.BikeStands
		sum.TotalAvailableBikes += s.AvailableBikes
		if strings.EqualFold(string(s.Status), string(StatusClosed)) {
			sum.ClosedStations++
		} else {
			sum.OpenStations++
		}
	}
	return sum
}

var dublin = mustLoadLocation("Europe/Dublin")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
