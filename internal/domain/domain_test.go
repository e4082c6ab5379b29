package domain

import "testing"

func TestPreferenceTop(t *testing.T) {
	p := PreferenceVector{28: 0.5, 18: 0.05, 35: 0.5, 27: -0.4, 878: 0.9}

	got := p.Top(0.1, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 genres, got %d", len(got))
	}
	if got[0].GenreID != 878 || got[1].GenreID != 28 {
		t.Errorf("unexpected order: %+v", got)
	}

	if all := p.Top(0, 10); len(all) != 4 {
		t.Errorf("expected 4 positive genres, got %d", len(all))
	}
}

func TestPositive(t *testing.T) {
	p := PreferenceVector{28: 0.2, 27: -0.2, 18: 0}
	pos := p.Positive()
	if len(pos) != 1 {
		t.Fatalf("expected 1 positive genre, got %d", len(pos))
	}
	if _, ok := pos[28]; !ok {
		t.Error("expected genre 28")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.3, 1},
		{-1.2, -1},
		{0.4, 0.4},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestActionDelta(t *testing.T) {
	tests := []struct {
		action Action
		want   float64
		valid  bool
	}{
		{ActionFavorite, 0.3, true},
		{ActionWatchlist, 0.1, true},
		{ActionUnfavorite, -0.2, true},
		{Action("rate"), 0, false},
	}
	for _, tt := range tests {
		if got := tt.action.Delta(); got != tt.want {
			t.Errorf("%s delta = %v, want %v", tt.action, got, tt.want)
		}
		if tt.action.Valid() != tt.valid {
			t.Errorf("%s valid = %v", tt.action, !tt.valid)
		}
	}
}

func TestGenreName(t *testing.T) {
	if got := GenreName(878); got != "Science Fiction" {
		t.Errorf("got %q", got)
	}
	if got := GenreName(1); got != "Unknown" {
		t.Errorf("got %q", got)
	}
}

func TestNewMovieFeaturesPrefersDetails(t *testing.T) {
	m := Movie{ID: 603, VoteAverage: 8.2, ReleaseDate: "1999-03-30"}
	cast := make([]CastMember, 12)
	for i := range cast {
		cast[i] = CastMember{ID: int64(i + 1)}
	}
	details := &Movie{
		ID:         603,
		Popularity: 80,
		Genres:     []Genre{{ID: 28}, {ID: 878}},
		Runtime:    136,
		Credits: &Credits{
			Cast: cast,
			Crew: []CrewMember{{ID: 9, Job: "Producer"}, {ID: 42, Job: "Director"}},
		},
	}

	f := NewMovieFeatures(m, details)

	if len(f.Genres) != 2 || f.Genres[0] != 28 {
		t.Errorf("genres = %v", f.Genres)
	}
	if len(f.CastIDs) != 10 {
		t.Errorf("expected 10 cast ids, got %d", len(f.CastIDs))
	}
	if f.DirectorID == nil || *f.DirectorID != 42 {
		t.Errorf("director = %v", f.DirectorID)
	}
	if f.PopularityScore != 80 || f.VoteAverage != 8.2 {
		t.Errorf("popularity %v vote %v", f.PopularityScore, f.VoteAverage)
	}
	if f.ReleaseYear != 1999 || f.Runtime != 136 {
		t.Errorf("year %d runtime %d", f.ReleaseYear, f.Runtime)
	}
}

func TestReleaseYearDefault(t *testing.T) {
	if got := releaseYear(""); got != 2000 {
		t.Errorf("got %d", got)
	}
	if got := releaseYear("2014"); got != 2014 {
		t.Errorf("got %d", got)
	}
}
