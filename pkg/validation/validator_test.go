package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type payload struct {
	Username  string `json:"username" binding:"required,username" validate:"required,username"`
	Email     string `json:"email" validate:"required,max=255"`
	FirstName string `json:"firstName" validate:"required,personname"`
	Age       int    `json:"age" validate:"min=1"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	err := newValidator().Struct(payload{
		Username:  strings.Repeat("u", 51),
		FirstName: strings.Repeat("f", 101),
	})
	got := ToDetails(err)

	want := map[string]string{
		"username":  "must be at most 50 characters long",
		"email":     "is required",
		"firstName": "must be at most 100 characters long",
		"age":       "must be at least 1",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestToDetailsInvalidJSON(t *testing.T) {
	var p payload
	err := json.Unmarshal([]byte(`{"username":`), &p)
	if got := ToDetails(err); got["payload"] != "invalid json" {
		t.Fatalf("got %v", got)
	}
	err = json.Unmarshal([]byte(`{"username":5}`), &p)
	if got := ToDetails(err); got["payload"] != "invalid json" {
		t.Fatalf("got %v", got)
	}
}

func TestToDetailsNil(t *testing.T) {
	if ToDetails(nil) != nil {
		t.Fatal("nil error should give nil details")
	}
}
