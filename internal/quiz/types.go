package quiz

// Difficulty selects the grade band a problem is generated for.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a caller-supplied string onto the closed enumeration.
// Empty or unrecognized values fall back to the easy tier rather than failing.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyEasy
	}
}

// Operation is one of the four arithmetic operations a problem may use.
type Operation string

const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
)

// AllOperations is the default operation set when the caller supplies none.
var AllOperations = []Operation{OpAddition, OpSubtraction, OpMultiplication, OpDivision}

// NormalizeOperations filters raw caller input down to known operations,
// dropping duplicates. An empty result (nothing supplied, or nothing
// recognized) yields the full set: generation never fails for this reason.
func NormalizeOperations(raw []string) []Operation {
	seen := make(map[Operation]bool, len(raw))
	var ops []Operation
	for _, r := range raw {
		op := Operation(r)
		switch op {
		case OpAddition, OpSubtraction, OpMultiplication, OpDivision:
			if !seen[op] {
				seen[op] = true
				ops = append(ops, op)
			}
		}
	}
	if len(ops) == 0 {
		return AllOperations
	}
	return ops
}

// Problem is a generated word problem with its authoritative answer.
type Problem struct {
	Text   string  `json:"problem_text"`
	Answer float64 `json:"final_answer"`
}

// GeneratedProblem is a persisted Problem addressable by its session id.
type GeneratedProblem struct {
	Problem
	SessionID string
}

// Verdict is the judgment returned for one submitted answer. CorrectAnswer
// is always echoed so the caller can display it regardless of feedback.
type Verdict struct {
	IsCorrect     bool
	Feedback      string
	CorrectAnswer float64
}
