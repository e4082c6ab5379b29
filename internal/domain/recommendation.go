package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source tags which signal produced a candidate.
type Source string

const (
	SourceContent         Source = "content"
	SourceCollaborative   Source = "collaborative"
	SourceTrending        Source = "trending"
	SourceSimilarCast     Source = "similar_cast"
	SourceSimilarDirector Source = "similar_director"
)

// Candidate is one scored suggestion inside a single generation pass.
type Candidate struct {
	MovieID int64   `json:"movie_id"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Source  Source  `json:"type"`
}

// CachedRecommendation is a persisted row of the last generated list.
type CachedRecommendation struct {
	UserID    uuid.UUID `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Score     float64   `json:"recommendation_score"`
	Source    Source    `json:"recommendation_type"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Candidate drops the persistence fields.
func (c CachedRecommendation) Candidate() Candidate {
	return Candidate{MovieID: c.MovieID, Score: c.Score, Reason: c.Reason, Source: c.Source}
}

type RecommendationMeta struct {
	Strategy    string `json:"strategy"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
	Warnings    int    `json:"warnings"`
}

type BatchUserResult struct {
	UserID          uuid.UUID `json:"user_id"`
	Recommendations []Movie   `json:"recommendations,omitempty"`
	Status          string    `json:"status"`
	Strategy        string    `json:"strategy,omitempty"`
	Warnings        []string  `json:"warnings,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	EmptyCount       int   `json:"empty_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

// BatchQuery selects one page of known users and how many movies each gets.
type BatchQuery struct {
	Page     int
	PageSize int
	PerUser  int
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	PerUser    int               `json:"per_user"`
	TotalUsers int               `json:"total_users"`
	TotalPages int               `json:"total_pages"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}

const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
)
