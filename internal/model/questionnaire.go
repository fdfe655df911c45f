package model

import (
	"regexp"
	"rubric_backend/internal/util"
	"strings"
)

// QuestionnaireType 问卷类型，决定问卷的用途和归档目录
type QuestionnaireType string

const (
	ReviewQuestionnaire           QuestionnaireType = "ReviewQuestionnaire"
	MetareviewQuestionnaire       QuestionnaireType = "MetareviewQuestionnaire"
	AuthorFeedbackQuestionnaire   QuestionnaireType = "AuthorFeedbackQuestionnaire"
	TeammateReviewQuestionnaire   QuestionnaireType = "TeammateReviewQuestionnaire"
	SurveyQuestionnaire           QuestionnaireType = "SurveyQuestionnaire"
	AssignmentSurveyQuestionnaire QuestionnaireType = "AssignmentSurveyQuestionnaire"
	GlobalSurveyQuestionnaire     QuestionnaireType = "GlobalSurveyQuestionnaire"
	CourseSurveyQuestionnaire     QuestionnaireType = "CourseSurveyQuestionnaire"
	BookmarkRatingQuestionnaire   QuestionnaireType = "BookmarkRatingQuestionnaire"
	QuizQuestionnaire             QuestionnaireType = "QuizQuestionnaire"
)

var questionnaireTypes = []QuestionnaireType{
	ReviewQuestionnaire,
	MetareviewQuestionnaire,
	AuthorFeedbackQuestionnaire,
	TeammateReviewQuestionnaire,
	SurveyQuestionnaire,
	AssignmentSurveyQuestionnaire,
	GlobalSurveyQuestionnaire,
	CourseSurveyQuestionnaire,
	BookmarkRatingQuestionnaire,
	QuizQuestionnaire,
}

// 目录名由多个单词组成的类型，展示类型用 % 连接以便 LIKE 匹配 "Author Feedback"
var multiWordDisplayTypes = map[string]bool{
	"AuthorFeedback":   true,
	"CourseSurvey":     true,
	"TeammateReview":   true,
	"GlobalSurvey":     true,
	"AssignmentSurvey": true,
	"BookmarkRating":   true,
}

var upperBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

func QuestionnaireTypes() []QuestionnaireType {
	out := make([]QuestionnaireType, len(questionnaireTypes))
	copy(out, questionnaireTypes)
	return out
}

// ParseQuestionnaireType 校验问卷类型名称
func ParseQuestionnaireType(name string) (QuestionnaireType, error) {
	name = strings.Join(strings.Fields(name), "")
	for _, t := range questionnaireTypes {
		if string(t) == name {
			return t, nil
		}
	}
	return "", util.NewValidationError("unknown questionnaire type %q", name)
}

// DisplayType 问卷类型对应的展示分类
func (t QuestionnaireType) DisplayType() string {
	display := strings.TrimSuffix(string(t), "Questionnaire")
	if multiWordDisplayTypes[display] {
		display = upperBoundary.ReplaceAllString(display, "$1%$2")
	}
	return display
}

// IsDisplayType 展示类型只能是某个问卷类型对应的分类
func IsDisplayType(display string) bool {
	for _, t := range questionnaireTypes {
		if t.DisplayType() == display {
			return true
		}
	}
	return false
}

// swagger:model Questionnaire
type Questionnaire struct {
	BaseModel
	Name             string            `gorm:"size:255;not null" json:"name"`
	InstructorID     uint              `gorm:"index;not null" json:"instructorId"`
	Private          bool              `json:"private"`
	MinQuestionScore int               `gorm:"not null" json:"minQuestionScore"`
	MaxQuestionScore int               `gorm:"not null" json:"maxQuestionScore"`
	Type             QuestionnaireType `gorm:"size:64;not null;index" json:"type"`
	DisplayType      string            `gorm:"size:64;index" json:"displayType"`
	InstructionLoc   string            `gorm:"type:text" json:"instructionLoc"`
	Questions        []Question        `gorm:"foreignKey:QuestionnaireID" json:"questions,omitempty"`
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}

// Validate 名称非空、类型合法、分值区间合法
func (q *Questionnaire) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return util.NewValidationError("A rubric or survey must have a title.")
	}
	if _, err := ParseQuestionnaireType(string(q.Type)); err != nil {
		return err
	}
	if !IsDisplayType(q.DisplayType) {
		return util.NewValidationError("unknown display type %q", q.DisplayType)
	}
	if q.MinQuestionScore < 0 || q.MaxQuestionScore < 0 {
		return util.NewValidationError("The minimum and maximum question score cannot be negative.")
	}
	if q.MinQuestionScore >= q.MaxQuestionScore {
		return util.NewValidationError("The minimum question score must be less than the maximum.")
	}
	return nil
}

// AccessLabel 访问权限的可读形式
func (q *Questionnaire) AccessLabel() string {
	if q.Private {
		return "private"
	}
	return "public"
}

// CopyFor 复制问卷基本信息（不含题目），创建者改为 instructorID
func (q *Questionnaire) CopyFor(instructorID uint) *Questionnaire {
	return &Questionnaire{
		Name:             "Copy of " + q.Name,
		InstructorID:     instructorID,
		Private:          q.Private,
		MinQuestionScore: q.MinQuestionScore,
		MaxQuestionScore: q.MaxQuestionScore,
		Type:             q.Type,
		DisplayType:      q.DisplayType,
		InstructionLoc:   q.InstructionLoc,
	}
}
