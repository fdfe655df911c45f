package service

import (
	"reflect"
	"testing"

	"rubric_backend/internal/model"
	"rubric_backend/internal/util"
)

func baseQuestionnaire() model.Questionnaire {
	return model.Questionnaire{
		Name:             "Rubric",
		MinQuestionScore: 0,
		MaxQuestionScore: 5,
		Type:             model.ReviewQuestionnaire,
		DisplayType:      "Review",
	}
}

func TestApplyQuestionnaireFields(t *testing.T) {
	cases := []struct {
		name    string
		fields  map[string]interface{}
		changed []string
		kind    util.ErrorKind
	}{
		{name: "no change", fields: map[string]interface{}{"name": "Rubric", "max_question_score": 5}},
		{name: "string score", fields: map[string]interface{}{"max_question_score": "10"}, changed: []string{"max_question_score"}},
		{name: "json number", fields: map[string]interface{}{"min_question_score": float64(1)}, changed: []string{"min_question_score"}},
		{name: "private string", fields: map[string]interface{}{"private": "true"}, changed: []string{"private"}},
		{name: "type", fields: map[string]interface{}{"type": "Quiz Questionnaire"}, changed: []string{"type"}},
		{name: "unknown field", fields: map[string]interface{}{"instructor_id": 3}, kind: util.KindValidation},
		{name: "unknown type", fields: map[string]interface{}{"type": "Poll"}, kind: util.KindValidation},
		{name: "bad score", fields: map[string]interface{}{"min_question_score": "low"}, kind: util.KindValidation},
		{name: "fractional score", fields: map[string]interface{}{"min_question_score": 2.5}, kind: util.KindValidation},
		{name: "integral float score", fields: map[string]interface{}{"max_question_score": float64(8)}, changed: []string{"max_question_score"}},
		{name: "wildcard display type", fields: map[string]interface{}{"display_type": "%"}, kind: util.KindValidation},
		{name: "known display type", fields: map[string]interface{}{"display_type": "Author%Feedback"}, changed: []string{"display_type"}},
		{name: "empty range", fields: map[string]interface{}{"min_question_score": 5}, kind: util.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := baseQuestionnaire()
			before := q

			changed, err := applyQuestionnaireFields(&q, tc.fields)
			if tc.kind != "" {
				if !util.IsKind(err, tc.kind) {
					t.Fatalf("want %s, got %v", tc.kind, err)
				}
				if !reflect.DeepEqual(q, before) {
					t.Fatalf("questionnaire modified on error: %+v", q)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(changed) != len(tc.changed) {
				t.Fatalf("changed = %v, want keys %v", changed, tc.changed)
			}
			for _, k := range tc.changed {
				if _, ok := changed[k]; !ok {
					t.Fatalf("missing changed key %q in %v", k, changed)
				}
			}
		})
	}
}

func TestApplyQuestionPatch(t *testing.T) {
	cases := []struct {
		name    string
		q       model.Question
		patch   map[string]interface{}
		changed []string
		wantErr util.ErrorKind
	}{
		{name: "same values", q: criterion(1, "a"), patch: map[string]interface{}{"txt": "a", "weight": float64(1), "seq": "1"}},
		{name: "text and weight", q: criterion(1, "a"), patch: map[string]interface{}{"txt": "b", "weight": "4"}, changed: []string{"txt", "weight"}},
		{name: "clear weight", q: criterion(1, "a"), patch: map[string]interface{}{"weight": ""}, changed: []string{"weight"}},
		{name: "clearing empty weight", q: model.Question{Seq: 1, Type: model.TextArea}, patch: map[string]interface{}{"weight": nil}},
		{name: "reorder", q: criterion(1, "a"), patch: map[string]interface{}{"seq": 2.5, "break_before": false}, changed: []string{"seq", "break_before"}},
		{name: "fractional weight", q: criterion(1, "a"), patch: map[string]interface{}{"weight": 3.7}, wantErr: util.KindValidation},
		{name: "fractional weight string", q: criterion(1, "a"), patch: map[string]interface{}{"weight": "3.7"}, wantErr: util.KindValidation},
		{name: "non-positive seq", q: criterion(1, "a"), patch: map[string]interface{}{"seq": 0}, wantErr: util.KindValidation},
		{name: "weight on text", q: model.Question{Seq: 1, Type: model.TextField}, patch: map[string]interface{}{"weight": 2}, wantErr: util.KindValidation},
		{name: "alternatives on criterion", q: criterion(1, "a"), patch: map[string]interface{}{"alternatives": "a|b"}, wantErr: util.KindValidation},
		{name: "unknown type", q: criterion(1, "a"), patch: map[string]interface{}{"type": "Slider"}, wantErr: util.KindUnknownQuestionType},
		{name: "unknown field", q: criterion(1, "a"), patch: map[string]interface{}{"questionnaire_id": 9}, wantErr: util.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.q
			txt := q.Txt

			changed, err := applyQuestionPatch(&q, tc.patch)
			if tc.wantErr != "" {
				if !util.IsKind(err, tc.wantErr) {
					t.Fatalf("want %s, got %v", tc.wantErr, err)
				}
				if q.Txt != txt {
					t.Fatalf("question modified on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(changed) != len(tc.changed) {
				t.Fatalf("changed = %v, want keys %v", changed, tc.changed)
			}
			for _, k := range tc.changed {
				if _, ok := changed[k]; !ok {
					t.Fatalf("missing changed key %q in %v", k, changed)
				}
			}
		})
	}
}

func TestApplyQuestionPatchTypeChange(t *testing.T) {
	q := criterion(1, "a")
	changed, err := applyQuestionPatch(&q, map[string]interface{}{"type": "TextArea"})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if q.Weight != nil || q.MaxLabel != "" || q.MinLabel != "" || q.Size != "60, 5" {
		t.Fatalf("unexpected question after retype: %+v", q)
	}
	for _, k := range []string{"type", "weight", "size", "max_label", "min_label"} {
		if _, ok := changed[k]; !ok {
			t.Errorf("missing changed key %q in %v", k, changed)
		}
	}
	if v, ok := changed["weight"]; !ok || v != nil {
		t.Errorf("weight should be cleared, got %v", v)
	}

	d := model.Question{Seq: 1, Type: model.TextField, Size: "30"}
	changed, err = applyQuestionPatch(&d, map[string]interface{}{"type": "Dropdown"})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if d.Size != "" || d.Alternatives != model.DefaultAlternatives || changed["alternatives"] != model.DefaultAlternatives {
		t.Fatalf("unexpected question after retype: %+v (%v)", d, changed)
	}
}

func TestApplyQuestionPatchTypeChangeKeepsSubmittedFields(t *testing.T) {
	q := criterion(1, "a")
	*q.Weight = 4
	changed, err := applyQuestionPatch(&q, map[string]interface{}{"type": "Cake", "size": "40, 2", "weight": 4})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if q.Size != "40, 2" || q.Weight == nil || *q.Weight != 4 {
		t.Fatalf("submitted values not kept: %+v", q)
	}
	if q.MaxLabel != model.DefaultMaxLabel || q.MinLabel != model.DefaultMinLabel {
		t.Fatalf("labels not reset to defaults: %+v", q)
	}
	if _, ok := changed["weight"]; ok {
		t.Fatalf("weight unchanged but reported: %v", changed)
	}
}

func TestApplyQuestionPatchDoesNotAliasWeight(t *testing.T) {
	orig := criterion(1, "a")
	q := orig
	if _, err := applyQuestionPatch(&q, map[string]interface{}{"weight": 9}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if *orig.Weight != 1 {
		t.Fatalf("original weight changed to %d", *orig.Weight)
	}
	if *q.Weight != 9 {
		t.Fatalf("patched weight = %d", *q.Weight)
	}
}

func TestActorCanEdit(t *testing.T) {
	q := &model.Questionnaire{InstructorID: 7}
	cases := []struct {
		actor Actor
		want  bool
	}{
		{Actor{UserID: 7, Role: model.Instructor, InstructorID: 7}, true},
		{Actor{UserID: 8, Role: model.Instructor, InstructorID: 8}, false},
		{Actor{UserID: 30, Role: model.TeachingAssistant, InstructorID: 7}, true},
		{Actor{UserID: 31, Role: model.TeachingAssistant}, false},
		{Actor{UserID: 1, Role: model.Admin}, true},
		{Actor{UserID: 2, Role: model.SuperAdmin}, true},
		{Actor{UserID: 7, Role: model.Student, InstructorID: 7}, false},
	}
	for _, tc := range cases {
		if got := tc.actor.CanEdit(q); got != tc.want {
			t.Errorf("%+v CanEdit = %v, want %v", tc.actor, got, tc.want)
		}
	}
}
