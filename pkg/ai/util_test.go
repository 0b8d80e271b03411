package ai

import "testing"

type extractionPayload struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

func TestUnmarshalFlexible_ValidJSON(t *testing.T) {
	var out extractionPayload
	err := UnmarshalFlexible(`{"name": "alpha", "tags": ["a", "b"], "count": 2}`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "alpha" || out.Count != 2 || len(out.Tags) != 2 {
		t.Errorf("unexpected payload: %+v", out)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	var out extractionPayload
	err := UnmarshalFlexible(`"{\"name\": \"beta\", \"count\": 1}"`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "beta" || out.Count != 1 {
		t.Errorf("unexpected payload: %+v", out)
	}
}

func TestUnmarshalFlexible_RepairsMalformedJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(extractionPayload) bool
	}{
		{
			name:  "unquoted keys",
			input: `{name: "gamma", count: 3}`,
			check: func(p extractionPayload) bool { return p.Name == "gamma" && p.Count == 3 },
		},
		{
			name:  "trailing comma",
			input: `{"name": "delta", "tags": ["x",],}`,
			check: func(p extractionPayload) bool { return p.Name == "delta" && len(p.Tags) == 1 },
		},
		{
			name:  "doubled opening brace",
			input: `{{"name": "epsilon", "count": 5}`,
			check: func(p extractionPayload) bool { return p.Name == "epsilon" && p.Count == 5 },
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"name\": \"zeta\"}\n```",
			check: func(p extractionPayload) bool { return p.Name == "zeta" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out extractionPayload
			if err := UnmarshalFlexible(tt.input, &out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(out) {
				t.Errorf("unexpected payload: %+v", out)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayTarget(t *testing.T) {
	var out []extractionPayload
	err := UnmarshalFlexible(`[{"name": "a"}, {"name": "b"}]`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[1].Name != "b" {
		t.Errorf("unexpected payload: %+v", out)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var out extractionPayload
	if err := UnmarshalFlexible(`<html>not json</html>`, &out); err == nil {
		t.Fatal("expected an error for non-JSON input")
	}
}
