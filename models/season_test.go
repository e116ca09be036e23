package models

import (
	"fmt"
	"testing"
)

func TestSeasons(t *testing.T) {
	tests := []struct {
		name  string
		start int
		end   int
	}{
		{name: "default range", start: 2024, end: 2017},
		{name: "single season", start: 2020, end: 2020},
		{name: "long range", start: 2024, end: 1990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seasons := Seasons(tt.start, tt.end)
			if want := tt.start - tt.end + 1; len(seasons) != want {
				t.Fatalf("len=%d, want %d", len(seasons), want)
			}
			for i, s := range seasons {
				if want := fmt.Sprintf("%d-%d", s.StartYear, s.StartYear+1); s.Label() != want {
					t.Fatalf("label=%q, want %q", s.Label(), want)
				}
				if i > 0 && s.StartYear >= seasons[i-1].StartYear {
					t.Fatalf("seasons not strictly descending at %d: %v", i, seasons)
				}
			}
			if seasons[0].StartYear != tt.start || seasons[len(seasons)-1].StartYear != tt.end {
				t.Fatalf("bounds = %v..%v, want %d..%d", seasons[0], seasons[len(seasons)-1], tt.start, tt.end)
			}
		})
	}
}

func TestSeasonsInvertedRange(t *testing.T) {
	if got := Seasons(2017, 2024); len(got) != 0 {
		t.Fatalf("expected no seasons, got %v", got)
	}
}

func TestSeasonLabel(t *testing.T) {
	if got := (Season{StartYear: 2022}).Label(); got != "2022-2023" {
		t.Fatalf("label=%q", got)
	}
}

func TestCategoryTableID(t *testing.T) {
	c := Category{PlayerTableID: "p", TeamForTableID: "f", TeamAgainstTableID: "a"}
	cases := map[Role]string{
		RolePlayers:        "p",
		RoleTeamsFor:       "f",
		RoleTeamsAgainst:   "a",
		RoleClassification: "",
	}
	for role, want := range cases {
		if got := c.TableID(role); got != want {
			t.Fatalf("TableID(%s)=%q, want %q", role, got, want)
		}
	}
}
