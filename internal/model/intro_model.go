package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Intro struct {
	Id        int64           `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	Slug      string          `gorm:"type:text;not null;index"` // not unique: the model may emit colliding slugs
	Query     string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	Intro     datatypes.JSON  `gorm:"type:jsonb;not null"`
}

func (Intro) TableName() string {
	return "intros"
}
