package model

// swagger:model Question
type Question struct {
	BaseModel
	QuestionnaireID uint         `gorm:"index;not null" json:"questionnaireId"`
	Seq             float64      `gorm:"type:decimal(6,2);not null;index" json:"seq"`
	Txt             string       `gorm:"type:text" json:"txt"`
	Type            QuestionType `gorm:"size:64;not null;index" json:"type"`
	Weight          *int         `json:"weight,omitempty"`
	Size            string       `gorm:"size:64" json:"size,omitempty"`
	Alternatives    string       `gorm:"size:255" json:"alternatives,omitempty"`
	MaxLabel        string       `gorm:"size:255" json:"maxLabel,omitempty"`
	MinLabel        string       `gorm:"size:255" json:"minLabel,omitempty"`
	BreakBefore     bool         `json:"breakBefore"`

	Advices []QuestionAdvice `gorm:"foreignKey:QuestionID" json:"advices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CopyTo 复制题目内容到另一个问卷，不含ID和建议
func (q *Question) CopyTo(questionnaireID uint) Question {
	c := Question{
		QuestionnaireID: questionnaireID,
		Seq:             q.Seq,
		Txt:             q.Txt,
		Type:            q.Type,
		Size:            q.Size,
		Alternatives:    q.Alternatives,
		MaxLabel:        q.MaxLabel,
		MinLabel:        q.MinLabel,
		BreakBefore:     q.BreakBefore,
	}
	if q.Weight != nil {
		w := *q.Weight
		c.Weight = &w
	}
	return c
}

// QuestionAdvice 某一分值下给评审者的提示
type QuestionAdvice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Score      int    `json:"score"`
	Advice     string `gorm:"type:text" json:"advice"`
}

func (QuestionAdvice) TableName() string {
	return "question_advices"
}
