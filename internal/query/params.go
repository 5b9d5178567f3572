package query

import (
	"strconv"
	"strings"
)

const (
	SortName           = "name"
	SortAvailableBikes = "availablebikes"
	SortOccupancy      = "occupancy"

	DirAsc  = "asc"
	DirDesc = "desc"

	DefaultPage     = 1
	DefaultPageSize = 20
)

// Parameters describes one station query. Zero values mean "absent";
// Normalize turns any Parameters into its canonical form.
type Parameters struct {
	Status     string // OPEN or CLOSED, case-insensitive, empty for no filter
	MinBikes   *int
	SearchTerm string
	Sort       string
	Dir        string
	Page       int
	PageSize   int
}

// Normalize coerces p into canonical form. It never fails: anything invalid
// falls back to its default. Normalize(Normalize(p)) == Normalize(p).
func Normalize(p Parameters) Parameters {
	out := Parameters{
		Status:     strings.ToUpper(strings.TrimSpace(p.Status)),
		SearchTerm: strings.TrimSpace(p.SearchTerm),
		Sort:       strings.ToLower(strings.TrimSpace(p.Sort)),
		Dir:        strings.ToLower(strings.TrimSpace(p.Dir)),
		Page:       p.Page,
		PageSize:   p.PageSize,
	}

	if p.MinBikes != nil {
		v := *p.MinBikes
		out.MinBikes = &v
	}

	switch out.Sort {
	case SortName, SortAvailableBikes, SortOccupancy:
	default:
		out.Sort = SortName
	}

	switch out.Dir {
	case DirAsc, DirDesc:
	default:
		out.Dir = DirAsc
	}

	if out.Page <= 0 {
		out.Page = DefaultPage
	}
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}

	return out
}

// Key derives the deterministic cache key for normalized parameters.
// Every field takes part so distinct queries never share an entry.
func (p Parameters) Key() string {
	minBikes := "-"
	if p.MinBikes != nil {
		minBikes = strconv.Itoa(*p.MinBikes)
	}

	var b strings.Builder
	b.WriteString("status=")
	b.WriteString(p.Status)
	b.WriteString("|minBikes=")
	b.WriteString(minBikes)
	b.WriteString("|q=")
	b.WriteString(strconv.Quote(strings.ToLower(p.SearchTerm)))
	b.WriteString("|sort=")
	b.WriteString(p.Sort)
	b.WriteString("|dir=")
	b.WriteString(p.Dir)
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(p.Page))
	b.WriteString("|pageSize=")
	b.WriteString(strconv.Itoa(p.PageSize))
	return b.String()
}
