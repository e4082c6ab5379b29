package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

const (
	neighbourhoodSize   = 5
	collaborativeReason = "Users with similar taste also liked this."
)

// CollaborativeSignal recommends what the user's closest co-favoriters liked.
// Closeness is the number of shared favorites; the score is the fraction of a
// full neighbourhood that favorited the movie.
type CollaborativeSignal struct {
	store Store
}

func NewCollaborativeSignal(store Store) *CollaborativeSignal {
	return &CollaborativeSignal{store: store}
}

func (s *CollaborativeSignal) Source() domain.Source { return domain.SourceCollaborative }

func (s *CollaborativeSignal) Generate(ctx context.Context, in SignalInput) ([]domain.Candidate, error) {
	if len(in.Favorites) == 0 {
		return nil, nil
	}

	favIDs := make([]int64, len(in.Favorites))
	for i, f := range in.Favorites {
		favIDs[i] = f.MovieID
	}

	shared, err := s.store.FindCoFavorites(ctx, in.UserID, favIDs)
	if err != nil {
		return nil, fmt.Errorf("find co-favorites: %w", err)
	}
	neighbours := topNeighbours(shared, neighbourhoodSize)
	if len(neighbours) == 0 {
		return nil, nil
	}

	theirs, err := s.store.FavoritesByUsers(ctx, neighbours, favIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch neighbour favorites: %w", err)
	}

	counts := make(map[int64]int)
	var order []int64
	for _, um := range theirs {
		if counts[um.MovieID] == 0 {
			order = append(order, um.MovieID)
		}
		counts[um.MovieID]++
	}

	out := make([]domain.Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, domain.Candidate{
			MovieID: id,
			Score:   float64(counts[id]) / neighbourhoodSize,
			Reason:  collaborativeReason,
			Source:  domain.SourceCollaborative,
		})
	}
	return out, nil
}

// topNeighbours ranks users by shared-favorite count, ties by user id.
func topNeighbours(shared []domain.UserMovie, n int) []uuid.UUID {
	counts := make(map[uuid.UUID]int)
	for _, um := range shared {
		counts[um.UserID]++
	}

	users := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool {
		if counts[users[i]] != counts[users[j]] {
			return counts[users[i]] > counts[users[j]]
		}
		return users[i].String() < users[j].String()
	})

	if len(users) > n {
		users = users[:n]
	}
	return users
}
