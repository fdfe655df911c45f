package model

import (
	"strings"
	"testing"

	"rubric_backend/internal/util"
)

func TestParseQuestionnaireType(t *testing.T) {
	got, err := ParseQuestionnaireType("Review Questionnaire")
	if err != nil || got != ReviewQuestionnaire {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := ParseQuestionnaireType("Questionnaire"); !util.IsKind(err, util.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestDisplayType(t *testing.T) {
	cases := map[QuestionnaireType]string{
		ReviewQuestionnaire:           "Review",
		MetareviewQuestionnaire:       "Metareview",
		AuthorFeedbackQuestionnaire:   "Author%Feedback",
		TeammateReviewQuestionnaire:   "Teammate%Review",
		AssignmentSurveyQuestionnaire: "Assignment%Survey",
		QuizQuestionnaire:             "Quiz",
	}
	for typ, want := range cases {
		if got := typ.DisplayType(); got != want {
			t.Errorf("%s.DisplayType() = %q, want %q", typ, got, want)
		}
	}
}

func TestEveryTypeHasCategoryFolder(t *testing.T) {
	folders := map[string]bool{}
	for _, name := range CategoryFolders {
		folders[name] = true
	}
	for _, typ := range QuestionnaireTypes() {
		name := strings.ReplaceAll(typ.DisplayType(), "%", " ")
		if !folders[name] {
			t.Errorf("%s has no folder %q", typ, name)
		}
	}
}

func TestQuestionnaireValidate(t *testing.T) {
	cases := []struct {
		name string
		q    Questionnaire
		ok   bool
	}{
		{"valid", Questionnaire{Name: "R", Type: ReviewQuestionnaire, DisplayType: "Review", MaxQuestionScore: 5}, true},
		{"cross category", Questionnaire{Name: "R", Type: ReviewQuestionnaire, DisplayType: "Survey", MaxQuestionScore: 5}, true},
		{"wildcard display type", Questionnaire{Name: "R", Type: ReviewQuestionnaire, DisplayType: "%", MaxQuestionScore: 5}, false},
		{"root folder display type", Questionnaire{Name: "R", Type: ReviewQuestionnaire, DisplayType: RootQuestionnaireFolder, MaxQuestionScore: 5}, false},
		{"blank name", Questionnaire{Name: " ", Type: ReviewQuestionnaire, MaxQuestionScore: 5}, false},
		{"bad type", Questionnaire{Name: "R", Type: "Other", MaxQuestionScore: 5}, false},
		{"negative", Questionnaire{Name: "R", Type: ReviewQuestionnaire, MinQuestionScore: -1, MaxQuestionScore: 5}, false},
		{"equal bounds", Questionnaire{Name: "R", Type: ReviewQuestionnaire, MinQuestionScore: 3, MaxQuestionScore: 3}, false},
	}
	for _, tc := range cases {
		err := tc.q.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !util.IsKind(err, util.KindValidation) {
			t.Errorf("%s: want validation error, got %v", tc.name, err)
		}
	}
}

func TestCopyFor(t *testing.T) {
	src := Questionnaire{Name: "Rubric", InstructorID: 1, Private: true, MaxQuestionScore: 5, Type: QuizQuestionnaire, DisplayType: "Quiz", InstructionLoc: "x"}
	src.ID = 9
	src.Questions = []Question{{Txt: "q"}}

	c := src.CopyFor(4)
	if c.ID != 0 || c.Name != "Copy of Rubric" || c.InstructorID != 4 || c.Questions != nil {
		t.Fatalf("unexpected copy: %+v", c)
	}
	if !c.Private || c.Type != QuizQuestionnaire || c.DisplayType != "Quiz" || c.InstructionLoc != "x" {
		t.Fatalf("attributes not copied: %+v", c)
	}
}

func TestUserRoles(t *testing.T) {
	if !Admin.AtLeast(Instructor) || TeachingAssistant.AtLeast(Instructor) {
		t.Fatalf("role ordering broken")
	}
	if UserRole("guest").AtLeast(Student) {
		t.Fatalf("unknown role must not pass")
	}

	instructorID := uint(3)
	ta := User{Role: TeachingAssistant, InstructorID: &instructorID}
	ta.ID = 10
	if ta.EffectiveInstructorID() != 3 {
		t.Fatalf("assistant should act as its instructor")
	}
	inst := User{Role: Instructor}
	inst.ID = 3
	if inst.EffectiveInstructorID() != 3 {
		t.Fatalf("instructor should act as itself")
	}
}
