package llm

import (
	"testing"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	input := `{"name": "test", "value": 123}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_PlainArray(t *testing.T) {
	input := `[{"name": "a"}, {"name": "b"}]`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	input := `Here are the extracted fields:

{"fields": [{"field_name": "ein", "value": "12-3456789"}]}

Let me know if you need anything else.`

	expected := `{"fields": [{"field_name": "ein", "value": "12-3456789"}]}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestExtractJSON_MarkdownCodeFence(t *testing.T) {
	input := "```json\n{\"name\": \"test\"}\n```"
	expected := `{"name": "test"}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestExtractJSON_BracketsInsideStrings(t *testing.T) {
	input := `{"note": "contains } and { inside", "ok": true}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_EscapedQuotes(t *testing.T) {
	input := `{"quote": "she said \"hello\""}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	if _, err := ExtractJSON("no structured content here"); err == nil {
		t.Error("expected error for response without JSON")
	}
}

func TestExtractJSON_UnbalancedJSON(t *testing.T) {
	if _, err := ExtractJSON(`{"name": "test"`); err == nil {
		t.Error("expected error for unbalanced JSON")
	}
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	result, err := ParseJSONResponse[payload](`Some preamble {"name": "test", "count": 3} trailing`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "test" || result.Count != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseJSONResponse_TypeMismatch(t *testing.T) {
	type payload struct {
		Count int `json:"count"`
	}

	if _, err := ParseJSONResponse[payload](`{"count": "not-a-number"}`); err == nil {
		t.Error("expected unmarshal error")
	}
}
