package domain

// Movie is a catalog record. Summary endpoints (trending, discover) fill the
// list fields and GenreIDs; the details endpoint also fills Genres, Runtime
// and Credits.
type Movie struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path"`
	BackdropPath     string   `json:"backdrop_path"`
	ReleaseDate      string   `json:"release_date"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Popularity       float64  `json:"popularity"`
	GenreIDs         []int    `json:"genre_ids,omitempty"`
	OriginalLanguage string   `json:"original_language"`
	Genres           []Genre  `json:"genres,omitempty"`
	Runtime          int      `json:"runtime,omitempty"`
	Credits          *Credits `json:"credits,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MoviePage is one page of a list endpoint.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// SortKey orders discover results.
type SortKey string

const (
	SortByRating     SortKey = "vote_average.desc"
	SortByPopularity SortKey = "popularity.desc"
	SortByVoteCount  SortKey = "vote_count.desc"
)

// SortKeys lists every key the discover endpoint accepts.
var SortKeys = []SortKey{SortByRating, SortByPopularity, SortByVoteCount}

type DiscoverQuery struct {
	GenreID   int
	MinRating float64
	SortBy    SortKey
	Page      int
}

// GenreIDList returns the movie's genre ids, preferring the summary list and
// falling back to the detailed genre objects.
func (m *Movie) GenreIDList() []int {
	if len(m.GenreIDs) > 0 {
		return m.GenreIDs
	}
	ids := make([]int, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// Director returns the crew id credited as "Director", if any.
func (m *Movie) Director() (int64, bool) {
	if m.Credits == nil {
		return 0, false
	}
	for _, c := range m.Credits.Crew {
		if c.Job == "Director" {
			return c.ID, true
		}
	}
	return 0, false
}
