package models

import (
	"strconv"
	"time"
)

// StationRecord is the persisted snake_case record, as found in the
// stations data file and in document store bodies.
type StationRecord struct {
	ID                  string         `json:"id"`
	Number              int            `json:"number"`
	Name                string         `json:"name"`
	Address             string         `json:"address"`
	Position            RecordPosition `json:"position"`
	BikeStands          int            `json:"bike_stands"`
	AvailableBikes      int            `json:"available_bikes"`
	AvailableBikeStands int            `json:"available_bike_stands"`
	Status              string         `json:"status"`
	LastUpdate          int64          `json:"last_update"`
}

type RecordPosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToStation maps a record into a Station and enforces its invariants.
// The stored available_bike_stands is ignored, it is always recomputed.
func (r StationRecord) ToStation() Station {
	s := Station{
		Number:                r.Number,
		Name:                  r.Name,
		Address:               r.Address,
		Position:              Position{Latitude: r.Position.Lat, Longitude: r.Position.Lng},
		BikeStands:            r.BikeStands,
		AvailableBikes:        r.AvailableBikes,
		Status:                Status(r.Status),
		LastUpdateEpochMillis: r.LastUpdate,
	}
	s.Normalize()
	return s
}

// RecordFromStation is the inverse of ToStation.
func RecordFromStation(s Station) StationRecord {
	return StationRecord{
		ID:                  s.ID(),
		Number:              s.Number,
		Name:                s.Name,
		Address:             s.Address,
		Position:            RecordPosition{Lat: s.Position.Latitude, Lng: s.Position.Longitude},
		BikeStands:          s.BikeStands,
		AvailableBikes:      s.AvailableBikes,
		AvailableBikeStands: s.AvailableBikeStands,
		Status:              string(s.Status),
		LastUpdate:          s.LastUpdateEpochMillis,
	}
}

// StationDTO is the API representation of a station.
type StationDTO struct {
	Number                int         `json:"number"`
	Name                  string      `json:"name"`
	Address               string      `json:"address"`
	Position              PositionDTO `json:"position"`
	BikeStands            int         `json:"bikeStands"`
	AvailableBikes        int         `json:"availableBikes"`
	AvailableBikeStands   int         `json:"availableBikeStands"`
	Status                string      `json:"status"`
	Occupancy             float64     `json:"occupancy"`
	LastUpdateEpochMillis int64       `json:"lastUpdateEpochMillis"`
	LastUpdateLocal       string      `json:"lastUpdateLocal"`
}

type PositionDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewStationDTO shapes a station for output, adding derived fields.
func NewStationDTO(s Station) StationDTO {
	return StationDTO{
		Number:                s.Number,
		Name:                  s.Name,
		Address:               s.Address,
		Position:              PositionDTO{Lat: s.Position.Latitude, Lng: s.Position.Longitude},
		BikeStands:            s.BikeStands,
		AvailableBikes:        s.AvailableBikes,
		AvailableBikeStands:   s.AvailableBikeStands,
		Status:                string(s.Status),
		Occupancy:             s.Occupancy(),
		LastUpdateEpochMillis: s.LastUpdateEpochMillis,
		LastUpdateLocal:       s.LastUpdateLocal().Format(time.RFC3339),
	}
}

// NewStationDTOs shapes a page of stations, never returning nil so it encodes as [].
func NewStationDTOs(stations []Station) []StationDTO {
	out := make([]StationDTO, 0, len(stations))
	for _, s := range stations {
		out = append(out, NewStationDTO(s))
	}
	return out
}

// ToStation maps an API body into a Station. Derived fields on the body are ignored;
// a missing last update is stamped with now.
func (d StationDTO) ToStation(now time.Time) Station {
	s := Station{
		Number:                d.Number,
		Name:                  d.Name,
		Address:               d.Address,
		Position:              Position{Latitude: d.Position.Lat, Longitude: d.Position.Lng},
		BikeStands:            d.BikeStands,
		AvailableBikes:        d.AvailableBikes,
		Status:                Status(d.Status),
		LastUpdateEpochMillis: d.LastUpdateEpochMillis,
	}
	if s.LastUpdateEpochMillis <= 0 {
		s.LastUpdateEpochMillis = now.UnixMilli()
	}
	s.Normalize()
	return s
}

func stationID(number int) string {
	return strconv.Itoa(number)
}
