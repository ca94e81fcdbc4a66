package similarity

import (
	"context"
	"log/slog"
	"math"

	apperrors "github.com/yanqian/adventure-ai/pkg/errors"
)

const (
	topScore  = 0.9
	scoreStep = 0.1
)

// Service exposes adventure lookup capabilities.
type Service interface {
	FindSimilar(ctx context.Context, adventureID int64) (Response, error)
	Get(ctx context.Context, adventureID int64) (Record, error)
}

type service struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewService wires up the similarity domain.
func NewService(catalog Catalog, logger *slog.Logger) Service {
	return &service{catalog: catalog, logger: logger.With("component", "similarity.service")}
}

// FindSimilar returns the catalog neighbors of adventureID with a synthetic
// score decreasing by rank. Unknown ids yield an empty list, not an error.
func (s *service) FindSimilar(ctx context.Context, adventureID int64) (Response, error) {
	s.logger.Info("searching similar adventures", "adventure_id", adventureID)
	out := Response{SimilarAdventures: []SimilarAdventure{}}

	if _, ok, err := s.catalog.Adventure(ctx, adventureID); err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeCatalog, "adventure lookup failed", err)
	} else if !ok {
		s.logger.Warn("adventure not found", "adventure_id", adventureID)
		return out, nil
	}

	ids, err := s.catalog.Neighbors(ctx, adventureID)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeCatalog, "neighbor lookup failed", err)
	}
	for _, id := range ids {
		rec, ok, err := s.catalog.Adventure(ctx, id)
		if err != nil {
			return Response{}, apperrors.Wrap(apperrors.CodeCatalog, "adventure lookup failed", err)
		}
		if !ok {
			s.logger.Warn("neighbor missing from catalog", "adventure_id", adventureID, "neighbor_id", id)
			continue
		}
		out.SimilarAdventures = append(out.SimilarAdventures, SimilarAdventure{
			ID:              rec.ID,
			Title:           rec.Title,
			SimilarityScore: scoreForRank(len(out.SimilarAdventures)),
		})
	}

	s.logger.Info("similar adventures found", "adventure_id", adventureID, "count", len(out.SimilarAdventures))
	return out, nil
}

// Get returns a single catalog record.
func (s *service) Get(ctx context.Context, adventureID int64) (Record, error) {
	rec, ok, err := s.catalog.Adventure(ctx, adventureID)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeCatalog, "adventure lookup failed", err)
	}
	if !ok {
		return Record{}, apperrors.AdventureNotFound(adventureID)
	}
	return rec, nil
}

func scoreForRank(rank int) float64 {
	score := topScore - float64(rank)*scoreStep
	if score < 0 {
		return 0
	}
	return math.Round(score*100) / 100
}
