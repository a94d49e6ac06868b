package entity

import (
	"encoding/json"
	"time"
)

type Intro struct {
	Id        int64
	Slug      string
	Query     string
	Embedding []float32
	Intro     json.RawMessage
	CreatedAt time.Time
}
