package query

import (
	"slices"
	"sort"
	"strings"

	"dublinbikes-api/internal/models"
)

// Page is one page of an executed query.
type Page struct {
	Items []models.Station
	// Total is the number of stations matching the filters before pagination.
	Total int
}

// Execute runs filter, search, sort and paginate over stations, in that order.
// The input slice is never modified.
func Execute(stations []models.Station, p Parameters) Page {
	p = Normalize(p)
	matched := make([]models.Station, 0, len(stations))
	term := strings.ToLower(strings.TrimSpace(p.SearchTerm))

	for _, s := range stations {
		if p.Status != "" && !strings.EqualFold(string(s.Status), p.Status) {
			continue
		}
		if p.MinBikes != nil && s.AvailableBikes < *p.MinBikes {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(s.Name), term) &&
			!strings.Contains(strings.ToLower(s.Address), term) {
			continue
		}
		matched = append(matched, s)
	}

	sortStations(matched, p.Sort, p.Dir)

	return Page{
		Items: paginate(matched, p.Page, p.PageSize),
		Total: len(matched),
	}
}

// sortStations orders ascending with a stable sort, so ties keep fetch order.
// Descending is the exact reverse of ascending, ties included.
func sortStations(stations []models.Station, key, dir string) {
	var less func(a, b models.Station) bool
	switch key {
	case SortAvailableBikes:
		less = func(a, b models.Station) bool { return a.AvailableBikes < b.AvailableBikes }
	case SortOccupancy:
		less = func(a, b models.Station) bool { return a.Occupancy() < b.Occupancy() }
	default:
		less = func(a, b models.Station) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}

	sort.SliceStable(stations, func(i, j int) bool { return less(stations[i], stations[j]) })

	if dir == DirDesc {
		slices.Reverse(stations)
	}
}

func paginate(stations []models.Station, page, pageSize int) []models.Station {
	n := len(stations)
	offset := page - 1

	start := n
	if offset <= 0 {
		start = 0
	} else if offset <= n/pageSize {
		start = offset * pageSize
	}
	end := start + min(pageSize, n-start)

	return stations[start:end:end]
}
