package specification

import "gorm.io/gorm"

// BySlug filters intros by their external-facing slug.
// Slugs are not unique by construction, so callers pairing this with FindOne
// should also order deterministically (e.g. OrderBy id).
type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}
