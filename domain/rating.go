package domain

import "time"

// Rating is a user's 1-5 star rating of a perfume, unique per (user, perfume).
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_perfume_rating" json:"user_id"`
	PerfumeID uint64    `gorm:"column:perfume_id;not null;uniqueIndex:idx_user_perfume_rating" json:"perfume_id"`
	Rating    int       `gorm:"column:rating;not null" json:"rating"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingStats is the per-perfume feedback aggregate read by the scorer.
type RatingStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}
