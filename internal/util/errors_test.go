package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cases := map[ErrorKind]int{
		KindNotFound:            http.StatusNotFound,
		KindValidation:          http.StatusUnprocessableEntity,
		KindUnknownQuestionType: http.StatusUnprocessableEntity,
		KindFiling:              http.StatusUnprocessableEntity,
		KindInUse:               http.StatusConflict,
		KindHasResponses:        http.StatusConflict,
		KindForbidden:           http.StatusForbidden,
		KindUnauthorized:        http.StatusUnauthorized,
		ErrorKind("other"):      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := StatusFor(kind); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("copy: %w", NewNotFoundError("No such Questionnaire exists."))
	if !IsKind(err, KindNotFound) {
		t.Fatalf("wrapped kind not found")
	}
	if IsKind(err, KindValidation) {
		t.Fatalf("wrong kind matched")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Fatalf("plain error matched")
	}
}

func TestFilingErrorKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewFilingError(cause, "could not file %q", "Review")
	if !errors.Is(err, cause) {
		t.Fatalf("cause not unwrapped")
	}
	ae, _ := AsAppError(err)
	if ae.Message != `could not file "Review"` {
		t.Fatalf("message = %q", ae.Message)
	}
	if err.Error() != `could not file "Review": duplicate key` {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestUnknownQuestionTypeMessage(t *testing.T) {
	ae, ok := AsAppError(NewUnknownQuestionTypeError("Slider"))
	if !ok || ae.Kind != KindUnknownQuestionType || ae.Message != `unknown question type "Slider"` {
		t.Fatalf("unexpected error %+v", ae)
	}
}
