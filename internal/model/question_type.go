package model

import (
	"rubric_backend/internal/util"
	"sort"
)

// QuestionType 题目类型标签，取值只能是下方注册表中的类型
type QuestionType string

const (
	Criterion              QuestionType = "Criterion"
	Scale                  QuestionType = "Scale"
	Cake                   QuestionType = "Cake"
	Dropdown               QuestionType = "Dropdown"
	Checkbox               QuestionType = "Checkbox"
	MultipleChoiceRadio    QuestionType = "MultipleChoiceRadio"
	MultipleChoiceCheckbox QuestionType = "MultipleChoiceCheckbox"
	TextArea               QuestionType = "TextArea"
	TextField              QuestionType = "TextField"
	SectionHeader          QuestionType = "SectionHeader"
	TableHeader            QuestionType = "TableHeader"
	ColumnHeader           QuestionType = "ColumnHeader"
	UploadFile             QuestionType = "UploadFile"
)

type QuestionKind int

const (
	KindScored QuestionKind = iota + 1
	KindChoice
	KindText
	KindHeader
	KindUpload
)

const (
	DefaultMaxLabel     = "Strongly agree"
	DefaultMinLabel     = "Strongly disagree"
	DefaultAlternatives = "0|1|2|3|4|5"
	DefaultWeight       = 1
)

// QuestionVariant 一种题目类型及其默认属性
type QuestionVariant struct {
	Type         QuestionType
	Kind         QuestionKind
	Size         string
	Alternatives string
	sized        bool
}

var questionVariants = map[QuestionType]QuestionVariant{
	Criterion:              {Type: Criterion, Kind: KindScored, Size: "50, 3", sized: true},
	Scale:                  {Type: Scale, Kind: KindScored},
	Cake:                   {Type: Cake, Kind: KindScored, Size: "50, 3", sized: true},
	Dropdown:               {Type: Dropdown, Kind: KindChoice, Alternatives: DefaultAlternatives},
	Checkbox:               {Type: Checkbox, Kind: KindChoice},
	MultipleChoiceRadio:    {Type: MultipleChoiceRadio, Kind: KindChoice},
	MultipleChoiceCheckbox: {Type: MultipleChoiceCheckbox, Kind: KindChoice},
	TextArea:               {Type: TextArea, Kind: KindText, Size: "60, 5", sized: true},
	TextField:              {Type: TextField, Kind: KindText, Size: "30", sized: true},
	SectionHeader:          {Type: SectionHeader, Kind: KindHeader},
	TableHeader:            {Type: TableHeader, Kind: KindHeader},
	ColumnHeader:           {Type: ColumnHeader, Kind: KindHeader},
	UploadFile:             {Type: UploadFile, Kind: KindUpload},
}

// ResolveQuestionType 按名称查找题目类型，未注册的名称返回 UnknownQuestionType 错误
func ResolveQuestionType(name string) (QuestionVariant, error) {
	v, ok := questionVariants[QuestionType(name)]
	if !ok {
		return QuestionVariant{}, util.NewUnknownQuestionTypeError(name)
	}
	return v, nil
}

// QuestionTypes 所有已注册类型，按名称排序
func QuestionTypes() []QuestionType {
	types := make([]QuestionType, 0, len(questionVariants))
	for t := range questionVariants {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (v QuestionVariant) Scored() bool { return v.Kind == KindScored }

func (v QuestionVariant) UsesAlternatives() bool { return v.Kind == KindChoice }

func (v QuestionVariant) UsesSize() bool { return v.sized }

// NewQuestion 按类型默认值构造新题目
func (v QuestionVariant) NewQuestion(questionnaireID uint, seq float64) Question {
	q := Question{
		QuestionnaireID: questionnaireID,
		Seq:             seq,
		Type:            v.Type,
		BreakBefore:     true,
	}
	v.ApplyDefaults(&q)
	return q
}

// ApplyDefaults 仅填充为空的字段
func (v QuestionVariant) ApplyDefaults(q *Question) {
	if v.Scored() {
		if q.Weight == nil {
			w := DefaultWeight
			q.Weight = &w
		}
		if q.MaxLabel == "" {
			q.MaxLabel = DefaultMaxLabel
		}
		if q.MinLabel == "" {
			q.MinLabel = DefaultMinLabel
		}
	}
	if v.UsesSize() && q.Size == "" {
		q.Size = v.Size
	}
	if v.UsesAlternatives() && q.Alternatives == "" {
		q.Alternatives = v.Alternatives
	}
}

// Sanitize 清除该类型不使用的字段
func (v QuestionVariant) Sanitize(q *Question) {
	if !v.Scored() {
		q.Weight = nil
		q.MaxLabel = ""
		q.MinLabel = ""
	}
	if !v.UsesSize() {
		q.Size = ""
	}
	if !v.UsesAlternatives() {
		q.Alternatives = ""
	}
}

// Accepts 判断字段对该类型是否有意义
func (v QuestionVariant) Accepts(field string) bool {
	switch field {
	case "weight", "max_label", "min_label":
		return v.Scored()
	case "size":
		return v.UsesSize()
	case "alternatives":
		return v.UsesAlternatives()
	default:
		return true
	}
}
