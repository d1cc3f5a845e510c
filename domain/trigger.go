package domain

import "time"

const (
	TriggerReasonSurvey = "survey_submitted"
	TriggerReasonRating = "rating_changed"
)

// RecomputeTrigger is a durable pending-recompute marker. It is written in
// the same transaction as the survey or rating change that caused it, so the
// poller only ever sees triggers whose inputs are committed.
type RecomputeTrigger struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Reason    string    `gorm:"column:reason;not null" json:"reason"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecomputeTrigger) TableName() string {
	return "recompute_triggers"
}
