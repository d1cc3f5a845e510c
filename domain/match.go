package domain

import "time"

// CREATE TABLE public.perfume_matches (
//     user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
//     perfume_id   BIGINT NOT NULL REFERENCES perfumes(id) ON DELETE CASCADE,
//     score        NUMERIC NOT NULL,
//     last_updated TIMESTAMPTZ DEFAULT NOW(),
//     PRIMARY KEY (user_id, perfume_id)
// );

// PerfumeMatch is the authoritative per-(user, perfume) match score,
// always within [0,1]. Exactly one row per pair; recomputation overwrites,
// never duplicates.
type PerfumeMatch struct {
	UserID      uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	PerfumeID   uint64    `gorm:"column:perfume_id;primaryKey" json:"perfume_id"`
	Score       float64   `gorm:"column:score;not null" json:"score"`
	LastUpdated time.Time `gorm:"column:last_updated;autoUpdateTime" json:"last_updated"`
}

func (PerfumeMatch) TableName() string {
	return "perfume_matches"
}

// MatchScore is the serving DTO attached to perfume listings.
type MatchScore struct {
	PerfumeID uint64  `json:"perfume_id"`
	Score     float64 `json:"score"`
}
