package validator

import "testing"

type feedbackInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(feedbackInput{Rating: 4, Comment: "helpful sessions"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidateStructCollectsFailures(t *testing.T) {
	err := ValidateStruct(feedbackInput{Rating: 9})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Field != "rating" {
		t.Fatalf("expected json field name in failure, got %s", failures[0].Field)
	}
	if failures[0].Tag != "max" {
		t.Fatalf("expected max tag failure, got %s", failures[0].Tag)
	}
}
