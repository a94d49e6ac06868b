package implementation

import (
	"context"
	"errors"

	"portfolio-intro-be/internal/entity"
	"portfolio-intro-be/internal/mapper"
	"portfolio-intro-be/internal/model"
	"portfolio-intro-be/internal/repository/contract"
	"portfolio-intro-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type IntroRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IntroMapper
}

func NewIntroRepository(db *gorm.DB) contract.IntroRepository {
	return &IntroRepositoryImpl{
		db:     db,
		mapper: mapper.NewIntroMapper(),
	}
}

func (r *IntroRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IntroRepositoryImpl) Create(ctx context.Context, intro *entity.Intro) error {
	m := r.mapper.ToModel(intro)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*intro = *r.mapper.ToEntity(m)
	return nil
}

func (r *IntroRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Intro, error) {
	var m model.Intro
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IntroRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Intro, error) {
	var models []*model.Intro
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *IntroRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Intro{}).Count(&count).Error
	return count, err
}

// SearchNearest runs a single nearest-neighbor lookup over the HNSW cosine
// index. pgvector's <=> operator is cosine distance, so similarity is
// 1 - (embedding <=> query_vector). Ties at the same similarity resolve to
// the lowest id for reproducibility.
func (r *IntroRepositoryImpl) SearchNearest(ctx context.Context, embedding []float32, minSimilarity float64) (*contract.ScoredIntro, error) {
	type result struct {
		model.Intro
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("intros").
		Select("intros.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("1 - (embedding <=> ?) > ?", queryVector, minSimilarity).
		Order("similarity DESC, id ASC").
		Limit(1).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	return &contract.ScoredIntro{
		Intro:      r.mapper.ToEntity(&results[0].Intro),
		Similarity: results[0].Similarity,
	}, nil
}
