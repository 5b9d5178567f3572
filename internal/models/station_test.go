package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStationNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         Station
		wantBikes  int
		wantFree   int
		wantStatus Status
	}{
		{"within bounds", Station{BikeStands: 10, AvailableBikes: 4, Status: "open"}, 4, 6, StatusOpen},
		{"above capacity", Station{BikeStands: 5, AvailableBikes: 9, Status: "OPEN"}, 5, 0, StatusOpen},
		{"negative bikes", Station{BikeStands: 5, AvailableBikes: -3, Status: "closed"}, 0, 5, StatusClosed},
		{"zero capacity forces closed", Station{BikeStands: 0, AvailableBikes: 2, Status: "OPEN"}, 0, 0, StatusClosed},
		{"negative capacity", Station{BikeStands: -1, AvailableBikes: 0, Status: "OPEN"}, 0, 0, StatusClosed},
		{"unknown status opens", Station{BikeStands: 3, AvailableBikes: 1, Status: "maintenance"}, 1, 2, StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.in
			s.AvailableBikeStands = 999
			s.Normalize()
			if s.AvailableBikes != tt.wantBikes {
				t.Errorf("AvailableBikes = %d, want %d", s.AvailableBikes, tt.wantBikes)
			}
			if s.AvailableBikeStands != tt.wantFree {
				t.Errorf("AvailableBikeStands = %d, want %d", s.AvailableBikeStands, tt.wantFree)
			}
			if s.AvailableBikeStands != s.BikeStands-s.AvailableBikes {
				t.Error("AvailableBikeStands must equal BikeStands - AvailableBikes")
			}
			if s.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", s.Status, tt.wantStatus)
			}
		})
	}
}

func TestOccupancy(t *testing.T) {
	if got := (Station{BikeStands: 0}).Occupancy(); got != 0 {
		t.Errorf("Expected 0 occupancy for empty station, got %v", got)
	}
	if got := (Station{BikeStands: 20, AvailableBikes: 5}).Occupancy(); got != 0.25 {
		t.Errorf("Expected 0.25 occupancy, got %v", got)
	}
}

func TestLastUpdateLocal(t *testing.T) {
	// 2024-07-01T12:00:00Z is 13:00 IST in Dublin
	summer := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	s := Station{LastUpdateEpochMillis: summer.UnixMilli()}
	if got := s.LastUpdateLocal().Hour(); got != 13 {
		t.Errorf("Expected Dublin summer hour 13, got %d", got)
	}

	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s.LastUpdateEpochMillis = winter.UnixMilli()
	if got := s.LastUpdateLocal().Hour(); got != 12 {
		t.Errorf("Expected Dublin winter hour 12, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	stations := []Station{
		{Number: 1, BikeStands: 10, AvailableBikes: 2, Status: StatusOpen},
		{Number: 2, BikeStands: 5, AvailableBikes: 5, Status: StatusOpen},
		{Number: 3, BikeStands: 0, AvailableBikes: 0, Status: StatusClosed},
	}

	sum := Summarize(stations)
	want := Summary{TotalStations: 3, TotalBikeStands: 15, TotalAvailableBikes: 7, OpenStations: 2, ClosedStations: 1}
	if sum != want {
		t.Errorf("Summarize = %+v, want %+v", sum, want)
	}

	if empty := Summarize(nil); empty != (Summary{}) {
		t.Errorf("Expected zero summary for empty collection, got %+v", empty)
	}
}

func TestStationRecordMapping(t *testing.T) {
	raw := `{
		"id": "42",
		"number": 42,
		"name": "SMITHFIELD NORTH",
		"address": "Smithfield North",
		"position": {"lat": 53.349562, "lng": -6.278198},
		"bike_stands": 30,
		"available_bikes": 12,
		"available_bike_stands": 3,
		"status": "OPEN",
		"last_update": 1718000000000
	}`

	var rec StationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}

	s := rec.ToStation()
	if s.Number != 42 || s.ID() != "42" {
		t.Errorf("Unexpected identity: number=%d id=%s", s.Number, s.ID())
	}
	if s.AvailableBikeStands != 18 {
		t.Errorf("Expected recomputed available stands 18, got %d", s.AvailableBikeStands)
	}
	if s.Position.Latitude != 53.349562 || s.Position.Longitude != -6.278198 {
		t.Errorf("Unexpected position: %+v", s.Position)
	}

	back := RecordFromStation(s)
	if back.ID != "42" || back.AvailableBikeStands != 18 || back.LastUpdate != 1718000000000 {
		t.Errorf("Unexpected round trip record: %+v", back)
	}
}

func TestStationDTO(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	body := StationDTO{
		Number:              7,
		Name:                "HIGH STREET",
		BikeStands:          29,
		AvailableBikes:      40,
		AvailableBikeStands: 100,
		Status:              "open",
	}

	s := body.ToStation(now)
	if s.AvailableBikes != 29 || s.AvailableBikeStands != 0 {
		t.Errorf("Expected clamped availability, got bikes=%d stands=%d", s.AvailableBikes, s.AvailableBikeStands)
	}
	if s.LastUpdateEpochMillis != now.UnixMilli() {
		t.Errorf("Expected missing last update to be stamped with now")
	}
	if s.Status != StatusOpen {
		t.Errorf("Expected status OPEN, got %s", s.Status)
	}

	dto := NewStationDTO(s)
	if dto.Occupancy != 1 {
		t.Errorf("Expected occupancy 1, got %v", dto.Occupancy)
	}
	if dto.LastUpdateLocal != "2024-03-01T09:00:00Z" {
		t.Errorf("Unexpected local time rendering: %s", dto.LastUpdateLocal)
	}

	if list := NewStationDTOs(nil); list == nil || len(list) != 0 {
		t.Error("NewStationDTOs(nil) should return an empty, non-nil slice")
	}
}
