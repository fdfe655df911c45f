package model

// Answer 评审者对某道题的作答，本服务只统计和删除
type Answer struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	ResponseID uint   `gorm:"index" json:"responseId"`
	Answer     *int   `json:"answer,omitempty"`
	Comments   string `gorm:"type:text" json:"comments"`
}

func (Answer) TableName() string {
	return "answers"
}
