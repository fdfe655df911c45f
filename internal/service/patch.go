package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"rubric_backend/internal/model"
	"rubric_backend/internal/util"

	"github.com/spf13/cast"
)

// 允许通过批量编辑修改的问卷字段（即列名）
var questionnaireFields = map[string]bool{
	"name":               true,
	"private":            true,
	"min_question_score": true,
	"max_question_score": true,
	"type":               true,
	"display_type":       true,
	"instruction_loc":    true,
}

// 允许修改的题目字段（即列名）
var questionFields = map[string]bool{
	"txt":          true,
	"weight":       true,
	"seq":          true,
	"size":         true,
	"alternatives": true,
	"break_before": true,
	"max_label":    true,
	"min_label":    true,
	"type":         true,
}

func rejectUnknownFields(fields map[string]interface{}, allowed map[string]bool, what string) error {
	var unknown []string
	for k := range fields {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return util.NewValidationError("unknown %s field(s): %s", what, strings.Join(unknown, ", "))
}

func invalidField(field string, value interface{}) error {
	return util.NewValidationError("invalid value %v for field %q", value, field)
}

// applyQuestionnaireFields 修改 q 并返回实际变化的列；任何字段非法时不修改 q
func applyQuestionnaireFields(q *model.Questionnaire, fields map[string]interface{}) (map[string]interface{}, error) {
	if err := rejectUnknownFields(fields, questionnaireFields, "questionnaire"); err != nil {
		return nil, err
	}

	next := *q
	changed := make(map[string]interface{})

	for field, raw := range fields {
		switch field {
		case "name", "display_type", "instruction_loc":
			v, err := cast.ToStringE(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			setString(field, v, &next, changed)
		case "private":
			v, err := cast.ToBoolE(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			if v != next.Private {
				next.Private = v
				changed[field] = v
			}
		case "min_question_score", "max_question_score":
			v, err := toInt(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			target := &next.MinQuestionScore
			if field == "max_question_score" {
				target = &next.MaxQuestionScore
			}
			if v != *target {
				*target = v
				changed[field] = v
			}
		case "type":
			s, err := cast.ToStringE(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			t, err := model.ParseQuestionnaireType(s)
			if err != nil {
				return nil, err
			}
			if t != next.Type {
				next.Type = t
				changed[field] = string(t)
			}
		}
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	*q = next
	return changed, nil
}

func setString(field, v string, q *model.Questionnaire, changed map[string]interface{}) {
	var target *string
	switch field {
	case "name":
		target = &q.Name
	case "display_type":
		target = &q.DisplayType
	case "instruction_loc":
		target = &q.InstructionLoc
	}
	if *target != v {
		*target = v
		changed[field] = v
	}
}

// applyQuestionPatch 只记录与当前值不同的字段；返回空 map 表示无需写库
func applyQuestionPatch(q *model.Question, patch map[string]interface{}) (map[string]interface{}, error) {
	if err := rejectUnknownFields(patch, questionFields, "question"); err != nil {
		return nil, err
	}

	next := *q
	if q.Weight != nil {
		w := *q.Weight
		next.Weight = &w
	}
	changed := make(map[string]interface{})

	for field, raw := range patch {
		switch field {
		case "txt", "size", "alternatives", "max_label", "min_label":
			v, err := cast.ToStringE(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			target := questionStringField(&next, field)
			if *target != v {
				*target = v
				changed[field] = v
			}
		case "weight":
			if raw == nil || raw == "" {
				if next.Weight != nil {
					next.Weight = nil
					changed[field] = nil
				}
				continue
			}
			v, err := toInt(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			if next.Weight == nil || *next.Weight != v {
				next.Weight = &v
				changed[field] = v
			}
		case "seq":
			v, err := cast.ToFloat64E(raw)
			if err != nil || v <= 0 {
				return nil, invalidField(field, raw)
			}
			if v != next.Seq {
				next.Seq = v
				changed[field] = v
			}
		case "break_before":
			v, err := cast.ToBoolE(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			if v != next.BreakBefore {
				next.BreakBefore = v
				changed[field] = v
			}
		case "type":
			s, err := cast.ToStringE(raw)
			if err != nil {
				return nil, invalidField(field, raw)
			}
			variant, err := model.ResolveQuestionType(s)
			if err != nil {
				return nil, err
			}
			if variant.Type != next.Type {
				next.Type = variant.Type
				changed[field] = string(variant.Type)
			}
		}
	}

	if err := checkFieldsMeaningful(&next, patch); err != nil {
		return nil, err
	}
	if _, ok := changed["type"]; ok {
		retype(q, &next, patch, changed)
	}

	*q = next
	return changed, nil
}

// retype 类型变化后，本次补丁未提交的类型相关字段重置为新类型的默认值，变化的列并入 changed
func retype(prev, next *model.Question, patch map[string]interface{}, changed map[string]interface{}) {
	variant, err := model.ResolveQuestionType(string(next.Type))
	if err != nil {
		return
	}
	if _, ok := patch["weight"]; !ok {
		next.Weight = nil
	}
	for _, field := range typedStringFields {
		if _, ok := patch[field]; !ok {
			*questionStringField(next, field) = ""
		}
	}
	variant.Sanitize(next)
	variant.ApplyDefaults(next)

	switch {
	case next.Weight == nil && prev.Weight != nil:
		changed["weight"] = nil
	case next.Weight != nil && (prev.Weight == nil || *prev.Weight != *next.Weight):
		changed["weight"] = *next.Weight
	}
	for _, field := range typedStringFields {
		if v := *questionStringField(next, field); v != *questionStringField(prev, field) {
			changed[field] = v
		}
	}
}

// 取值依赖题目类型的文本字段
var typedStringFields = []string{"size", "alternatives", "max_label", "min_label"}

// toInt 整数字段只接受整数值，小数不截断
func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
	}
	return cast.ToIntE(raw)
}
