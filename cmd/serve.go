package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mathsprint/internal/llm"
	"github.com/abhisek/mathsprint/internal/logging"
	"github.com/abhisek/mathsprint/internal/quiz"
	"github.com/abhisek/mathsprint/internal/server"
	"github.com/abhisek/mathsprint/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MATHSPRINT_ADDR env var, default :8080)")
	serveCmd.Flags().String("log-file", "", "Also write JSON logs to this file with rotation")
}

func runServe(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	logFile, _ := cmd.Flags().GetString("log-file")

	log := logging.New(logging.Options{Debug: debug, File: logFile})
	defer log.Sync()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	svc := quiz.NewService(provider, st.SessionRepo(), quiz.DefaultConfig(), log)
	srv := server.New(svc, st, log, debug)

	log.Info("starting",
		zap.String("db", dbPath),
		zap.String("model", provider.ModelID()),
	)

	return srv.Run(ctx, resolveAddr(cmd))
}

// resolveAddr returns the listen address using --addr (highest priority),
// then MATHSPRINT_ADDR, then :8080.
func resolveAddr(cmd *cobra.Command) string {
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		return a
	}
	if a := os.Getenv("MATHSPRINT_ADDR"); a != "" {
		return a
	}
	return ":8080"
}
