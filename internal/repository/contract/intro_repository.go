package contract

import (
	"context"

	"portfolio-intro-be/internal/entity"
	"portfolio-intro-be/internal/repository/specification"
)

// ScoredIntro wraps an Intro with its cosine similarity to a query vector
type ScoredIntro struct {
	Intro      *entity.Intro
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type IntroRepository interface {
	Create(ctx context.Context, intro *entity.Intro) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Intro, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Intro, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchNearest returns the single closest record whose cosine similarity
	// strictly exceeds minSimilarity, or nil when none clears the floor.
	SearchNearest(ctx context.Context, embedding []float32, minSimilarity float64) (*ScoredIntro, error)
}
