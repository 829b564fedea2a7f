package quiz

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Fallback problems returned when model output cannot be used. Two distinct
// problems so logs and transcripts show which stage rejected the output.
var (
	// parseFallback replaces output with no recoverable JSON object.
	parseFallback = Problem{
		Text:   "Sarah has 12 stickers. She gives 5 stickers to her friend. How many stickers does Sarah have left?",
		Answer: 7,
	}

	// validationFallback replaces JSON that parsed but failed validation.
	validationFallback = Problem{
		Text:   "Tom has 8 apples. He eats 3 apples. How many apples does Tom have left?",
		Answer: 5,
	}
)

// problemSchemaJSON accepts the answer as either a number or a numeric
// string; models frequently quote numbers despite instructions.
const problemSchemaJSON = `{
	"type": "object",
	"required": ["problem_text", "final_answer"],
	"properties": {
		"problem_text": {"type": "string", "minLength": 1},
		"final_answer": {"type": ["number", "string"]}
	}
}`

var (
	problemSchemaOnce sync.Once
	problemSchema     *jsonschema.Schema
)

func compiledProblemSchema() *jsonschema.Schema {
	problemSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(problemSchemaJSON))
		if err != nil {
			panic(err)
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("problem.json", doc); err != nil {
			panic(err)
		}
		problemSchema, err = c.Compile("problem.json")
		if err != nil {
			panic(err)
		}
	})
	return problemSchema
}

// ExtractProblem turns untrusted model output into a usable Problem. It
// never fails: output that defeats parsing yields parseFallback, and output
// that parses but fails validation yields validationFallback.
//
// Recovery runs in order: direct parse of the trimmed output, then the span
// from the first '{' to the last '}' (models often wrap JSON in prose or
// code fences), then the fallback.
func ExtractProblem(raw string) Problem {
	val, ok := parseJSONObject(strings.TrimSpace(raw))
	if !ok {
		return parseFallback
	}

	if err := compiledProblemSchema().Validate(val); err != nil {
		return validationFallback
	}

	obj := val.(map[string]any)
	text := strings.TrimSpace(obj["problem_text"].(string))
	answer, ok := coerceNumber(obj["final_answer"])
	if !ok || text == "" || math.IsNaN(answer) || math.IsInf(answer, 0) {
		return validationFallback
	}

	return Problem{Text: text, Answer: answer}
}

// parseJSONObject attempts a direct parse, then retries on the widest
// brace-delimited span.
func parseJSONObject(s string) (any, bool) {
	var val any
	if err := json.Unmarshal([]byte(s), &val); err == nil {
		if _, isObj := val.(map[string]any); isObj {
			return val, true
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, false
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), &val); err != nil {
		return nil, false
	}
	if _, isObj := val.(map[string]any); !isObj {
		return nil, false
	}
	return val, true
}

// coerceNumber accepts the numeric types json.Unmarshal produces plus
// numeric strings.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
