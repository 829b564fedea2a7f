package quiz

import (
	"strconv"
	"strings"
)

// gradeBands maps a difficulty tier to the school level named in prompts.
var gradeBands = map[Difficulty]string{
	DifficultyEasy:   "Primary 3-4 (Grade 3-4)",
	DifficultyMedium: "Primary 5 (Grade 5)",
	DifficultyHard:   "Primary 6 (Grade 6)",
}

const generationSystem = `You are a math teacher creating word problems for primary school students.
Respond with a single JSON object and nothing else. No markdown, no code fences, no commentary.
The object must have exactly two fields:
  "problem_text": the word problem as a string
  "final_answer": the numeric answer as a plain number (not a string, no units, no working)`

// buildGenerationPrompt renders the user message for one problem request.
func buildGenerationPrompt(difficulty Difficulty, ops []Operation) string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}

	var b strings.Builder
	b.WriteString("Generate a math word problem suitable for a ")
	b.WriteString(gradeBands[difficulty])
	b.WriteString(" student.\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- Use only these operations: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n")
	b.WriteString("- The story should involve everyday objects and situations\n")
	b.WriteString("- The answer must work out to a single number\n")
	b.WriteString("- Keep the problem to 2-3 sentences\n")

	return b.String()
}

const feedbackSystem = `You are a supportive Primary 5 math teacher giving feedback to a student who answered a problem incorrectly.
Use simple language a 10-11 year old understands. Keep it to 3-4 sentences at most.
Be encouraging, use a couple of emojis, and guide the student toward the right approach without lecturing.
Just provide the feedback text, no additional formatting.`

// buildFeedbackPrompt renders the tutoring request for an incorrect answer.
func buildFeedbackPrompt(problemText string, correctAnswer, userAnswer float64) string {
	var b strings.Builder
	b.WriteString("Problem: ")
	b.WriteString(problemText)
	b.WriteString("\n")
	b.WriteString("Correct Answer: ")
	b.WriteString(formatAnswer(correctAnswer))
	b.WriteString("\n")
	b.WriteString("Student's Answer: ")
	b.WriteString(formatAnswer(userAnswer))
	b.WriteString("\n")

	return b.String()
}

// formatAnswer renders a numeric answer without a trailing ".0" on whole
// numbers.
func formatAnswer(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
