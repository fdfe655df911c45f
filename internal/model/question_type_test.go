package model

import (
	"testing"

	"rubric_backend/internal/util"
)

func TestResolveQuestionType(t *testing.T) {
	for _, typ := range QuestionTypes() {
		v, err := ResolveQuestionType(string(typ))
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if v.Type != typ {
			t.Fatalf("resolved %s as %s", typ, v.Type)
		}
	}

	_, err := ResolveQuestionType("criterion")
	if !util.IsKind(err, util.KindUnknownQuestionType) {
		t.Fatalf("lookup should be case sensitive, got %v", err)
	}
}

func TestNewQuestionDefaults(t *testing.T) {
	cases := []struct {
		typ          QuestionType
		weight       bool
		size         string
		alternatives string
	}{
		{Criterion, true, "50, 3", ""},
		{Scale, true, "", ""},
		{Dropdown, false, "", DefaultAlternatives},
		{TextArea, false, "60, 5", ""},
		{TextField, false, "30", ""},
		{SectionHeader, false, "", ""},
	}
	for _, tc := range cases {
		v, err := ResolveQuestionType(string(tc.typ))
		if err != nil {
			t.Fatalf("%s: %v", tc.typ, err)
		}
		q := v.NewQuestion(3, 7)
		if q.QuestionnaireID != 3 || q.Seq != 7 || !q.BreakBefore {
			t.Errorf("%s: bad identity fields %+v", tc.typ, q)
		}
		if (q.Weight != nil) != tc.weight {
			t.Errorf("%s: weight = %v", tc.typ, q.Weight)
		}
		if tc.weight && (*q.Weight != DefaultWeight || q.MaxLabel != DefaultMaxLabel || q.MinLabel != DefaultMinLabel) {
			t.Errorf("%s: scored defaults missing %+v", tc.typ, q)
		}
		if q.Size != tc.size || q.Alternatives != tc.alternatives {
			t.Errorf("%s: size = %q, alternatives = %q", tc.typ, q.Size, q.Alternatives)
		}
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	v, _ := ResolveQuestionType(string(Criterion))
	w := 4
	q := Question{Type: Criterion, Weight: &w, Size: "10, 2", MaxLabel: "Yes"}
	v.ApplyDefaults(&q)
	if *q.Weight != 4 || q.Size != "10, 2" || q.MaxLabel != "Yes" || q.MinLabel != DefaultMinLabel {
		t.Fatalf("explicit values overwritten: %+v", q)
	}
}

func TestSanitizeClearsUnusedFields(t *testing.T) {
	v, _ := ResolveQuestionType(string(TextField))
	w := 1
	q := Question{Type: TextField, Weight: &w, Size: "30", Alternatives: "a|b", MaxLabel: "hi"}
	v.Sanitize(&q)
	if q.Weight != nil || q.Alternatives != "" || q.MaxLabel != "" || q.Size != "30" {
		t.Fatalf("unexpected question after sanitize: %+v", q)
	}
}

func TestQuestionCopyTo(t *testing.T) {
	w := 2
	src := Question{Seq: 1.5, Txt: "t", Type: Criterion, Weight: &w, Size: "50, 3", BreakBefore: true}
	src.ID = 11
	src.Advices = []QuestionAdvice{{Score: 1, Advice: "x"}}

	c := src.CopyTo(20)
	if c.ID != 0 || c.QuestionnaireID != 20 || c.Advices != nil {
		t.Fatalf("copy kept identity: %+v", c)
	}
	if c.Seq != 1.5 || c.Txt != "t" || c.Size != "50, 3" || !c.BreakBefore {
		t.Fatalf("copy lost content: %+v", c)
	}
	*src.Weight = 5
	if *c.Weight != 2 {
		t.Fatalf("weight pointer shared with source")
	}
}
