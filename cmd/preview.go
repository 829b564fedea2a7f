package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mathsprint/internal/llm"
	"github.com/abhisek/mathsprint/internal/quiz"
	"github.com/abhisek/mathsprint/internal/store"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate and answer problems in the terminal (no database file)",
	Long: `Generate problems and answer them interactively.

This is a stateless developer tool backed by an in-memory database.
Useful for evaluating problem quality and prompt changes.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("difficulty", "easy", "Difficulty tier: easy, medium or hard")
	previewCmd.Flags().String("ops", "", "Comma-separated operations (addition,subtraction,multiplication,division); default all")
	previewCmd.Flags().Int("count", 5, "Number of problems to generate")
}

func runPreview(cmd *cobra.Command, args []string) error {
	difficultyVal, _ := cmd.Flags().GetString("difficulty")
	opsVal, _ := cmd.Flags().GetString("ops")
	count, _ := cmd.Flags().GetInt("count")

	difficulty := quiz.ParseDifficulty(difficultyVal)

	var rawOps []string
	if opsVal != "" {
		rawOps = strings.Split(opsVal, ",")
	}
	ops := quiz.NormalizeOperations(rawOps)

	// In-memory store: sessions and events vanish on exit.
	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open in-memory database: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), zap.NewNop())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	svc := quiz.NewService(provider, st.SessionRepo(), quiz.DefaultConfig(), zap.NewNop())
	scanner := bufio.NewScanner(os.Stdin)

	opNames := make([]string, len(ops))
	for i, op := range ops {
		opNames[i] = string(op)
	}
	fmt.Printf("Difficulty: %s, operations: %s\n", difficulty, strings.Join(opNames, ", "))
	fmt.Printf("Generating %d problems...\n\n", count)

	var correct int
	for i := 1; i <= count; i++ {
		gen, err := svc.Generate(ctx, difficulty, ops)
		if err != nil {
			fmt.Printf("Problem %d: generation failed: %v\n\n", i, err)
			continue
		}

		fmt.Printf("── Problem %d/%d ──\n", i, count)
		fmt.Println(gen.Text)

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answerText := strings.TrimSpace(scanner.Text())
		if answerText == "" {
			fmt.Print("(skipped)\n\n")
			continue
		}

		answer, err := strconv.ParseFloat(answerText, 64)
		if err != nil {
			fmt.Printf("Not a number: %q\n\n", answerText)
			continue
		}

		verdict, err := svc.Submit(ctx, gen.SessionID, answer)
		if err != nil {
			fmt.Printf("Submit failed: %v\n\n", err)
			continue
		}

		if verdict.IsCorrect {
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", strconv.FormatFloat(verdict.CorrectAnswer, 'f', -1, 64))
			fmt.Println(verdict.Feedback)
		}
		fmt.Println()
	}

	fmt.Printf("── Summary: %d/%d correct ──\n", correct, count)
	return nil
}
