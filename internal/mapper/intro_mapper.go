package mapper

import (
	"encoding/json"

	"portfolio-intro-be/internal/entity"
	"portfolio-intro-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type IntroMapper struct{}

func NewIntroMapper() *IntroMapper {
	return &IntroMapper{}
}

func (m *IntroMapper) ToEntity(e *model.Intro) *entity.Intro {
	if e == nil {
		return nil
	}

	return &entity.Intro{
		Id:        e.Id,
		Slug:      e.Slug,
		Query:     e.Query,
		Embedding: e.Embedding.Slice(),
		Intro:     json.RawMessage(e.Intro),
		CreatedAt: e.CreatedAt,
	}
}

func (m *IntroMapper) ToModel(e *entity.Intro) *model.Intro {
	if e == nil {
		return nil
	}

	return &model.Intro{
		Id:        e.Id,
		Slug:      e.Slug,
		Query:     e.Query,
		Embedding: pgvector.NewVector(e.Embedding),
		Intro:     datatypes.JSON(e.Intro),
		CreatedAt: e.CreatedAt,
	}
}

func (m *IntroMapper) ToEntities(intros []*model.Intro) []*entity.Intro {
	entities := make([]*entity.Intro, len(intros))
	for i, e := range intros {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
