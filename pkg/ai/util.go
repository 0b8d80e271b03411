package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// GenerateSchema reflects a JSON Schema from a Go type for structured
// model output. Additional properties are disallowed and the schema is
// inlined rather than referenced.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflector.Reflect(reflect.New(t).Interface())
}

// models occasionally emit "{{...}" openings
func dropDoubledBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		if rest := strings.TrimSpace(s[1:]); strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// UnmarshalFlexible parses model-produced JSON into out, tolerating the
// usual failure modes: valid JSON, JSON double-encoded as a string, and
// malformed JSON that jsonrepair can fix.
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if json.Unmarshal([]byte(input), out) == nil {
		return nil
	}

	// a JSON string whose content is the actual payload
	var inner string
	if json.Unmarshal([]byte(input), &inner) == nil {
		inner = strings.TrimSpace(inner)
		if json.Unmarshal([]byte(inner), out) == nil {
			return nil
		}
		input = inner
	}

	input = dropDoubledBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w (input: %s)", err, input)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: input=%s repaired=%s", input, repaired)
	}
	return nil
}
