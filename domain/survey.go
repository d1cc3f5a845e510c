package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SurveyResponse holds the whole survey payload for a user. Each submission
// replaces the previous one; there is no partial merge.
type SurveyResponse struct {
	UserID       uint              `gorm:"column:user_id;primaryKey" json:"user_id"`
	ResponseData datatypes.JSONMap `gorm:"column:response_data;type:jsonb" json:"response_data"`
	CompletedAt  time.Time         `gorm:"column:completed_at;autoUpdateTime" json:"completed_at"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

const (
	QuestionTypeGender = "gender"
	QuestionTypeAccord = "accord"
)

type SurveyQuestion struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	QuestionType string            `gorm:"column:question_type;not null" json:"question_type"`
	Text         string            `gorm:"column:text;not null" json:"text"`
	Options      datatypes.JSONMap `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	AccordName   string            `gorm:"column:accord_name" json:"accord_name,omitempty"`
	Order        int               `gorm:"column:display_order;not null;default:0" json:"order"`
	IsActive     bool              `gorm:"column:is_active;default:true" json:"is_active"`
}

func (SurveyQuestion) TableName() string {
	return "survey_questions"
}
