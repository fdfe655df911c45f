package util

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(TokenSubject{UserID: 5, Role: "teaching_assistant", Email: "ta@example.edu", InstructorID: 3}, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 5 || claims.InstructorID != 3 || claims.Role != "teaching_assistant" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
	expired, _ := GenerateJWT(TokenSubject{UserID: 5}, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Fatalf("expired token accepted")
	}
}
