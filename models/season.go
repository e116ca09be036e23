package models

import "strconv"

// Season is a competition year pair identified by its start year.
type Season struct {
	StartYear int
}

// Label renders the season as "2023-2024".
func (s Season) Label() string {
	return strconv.Itoa(s.StartYear) + "-" + strconv.Itoa(s.StartYear+1)
}

func (s Season) String() string {
	return s.Label()
}

// Seasons enumerates seasons from start (most recent) down to end (oldest),
// both inclusive. It returns an empty slice when start < end.
func Seasons(start, end int) []Season {
	if start < end {
		return []Season{}
	}
	out := make([]Season, 0, start-end+1)
	for year := start; year >= end; year-- {
		out = append(out, Season{StartYear: year})
	}
	return out
}
