package domain

import (
	"time"
)

// CREATE TABLE public.perfumes (
//     id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     external_id   TEXT,
//     name          TEXT NOT NULL,
//     brand         TEXT,
//     gender        TEXT NOT NULL DEFAULT 'unisex',
//     description   TEXT,
//     price_per_ml  NUMERIC,
//     thumbnail_url TEXT,
//     rating_count  INTEGER NOT NULL DEFAULT 0,
//     rating_mean   NUMERIC NOT NULL DEFAULT 0,
//     popularity    INTEGER NOT NULL DEFAULT 0,
//     created_at    TIMESTAMPTZ DEFAULT NOW(),
//     updated_at    TIMESTAMPTZ DEFAULT NOW()
// );

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderUnisex = "unisex"
)

type Perfume struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string    `gorm:"column:external_id" json:"external_id"`
	Name         string    `gorm:"column:name;type:text;not null" json:"name"`
	Brand        string    `gorm:"column:brand;type:text" json:"brand"`
	Gender       string    `gorm:"column:gender;type:text;default:unisex" json:"gender"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	PricePerML   float64   `gorm:"column:price_per_ml;type:numeric" json:"price_per_ml"`
	ThumbnailURL string    `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url"`
	RatingCount  int       `gorm:"column:rating_count;default:0" json:"rating_count"`
	RatingMean   float64   `gorm:"column:rating_mean;type:numeric;default:0" json:"rating_mean"`
	Popularity   int       `gorm:"column:popularity;default:0" json:"popularity"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Perfume) TableName() string {
	return "perfumes"
}

type Accord struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"column:name;unique;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
}

func (Accord) TableName() string {
	return "accords"
}

// PerfumeAccord links a perfume to one of its accords. Position 0 is the
// most dominant accord; the match pipeline derives attribute weights from it.
type PerfumeAccord struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PerfumeID uint64 `gorm:"column:perfume_id;not null;uniqueIndex:idx_perfume_accord" json:"perfume_id"`
	AccordID  uint   `gorm:"column:accord_id;not null;uniqueIndex:idx_perfume_accord" json:"accord_id"`
	Position  int    `gorm:"column:position;not null;default:0" json:"position"`
}

func (PerfumeAccord) TableName() string {
	return "perfume_accords"
}

// PerfumeWithAccords is the catalog read model consumed by the match
// pipeline: accord names ordered by predominance.
type PerfumeWithAccords struct {
	Perfume
	Accords []string `json:"accords"`
}
