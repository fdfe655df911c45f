package model

type Assignment struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	InstructorID uint   `gorm:"index" json:"instructorId"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// AssignmentQuestionnaire 作业引用的问卷
type AssignmentQuestionnaire struct {
	BaseModel
	AssignmentID        uint `gorm:"index;not null" json:"assignmentId"`
	QuestionnaireID     uint `gorm:"index;not null" json:"questionnaireId"`
	QuestionnaireWeight int  `json:"questionnaireWeight"`
	UsedInRound         *int `json:"usedInRound,omitempty"`
}

func (AssignmentQuestionnaire) TableName() string {
	return "assignment_questionnaires"
}
