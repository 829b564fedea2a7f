package quiz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/mathsprint/internal/llm"
	"github.com/abhisek/mathsprint/internal/store"
)

// correctFeedback is the fixed message for a correct answer. No provider
// call happens on this path.
const correctFeedback = "Fantastic work! You got it right 🎉 Keep it up and try the next challenge!"

// fallbackFeedback stands in when the provider cannot produce tutoring
// feedback. The verdict and correct answer still go out.
const fallbackFeedback = "Good try! Compare your answer with the correct one, work through the problem step by step, and give the next one a go! 💪"

// Service generates word problems and evaluates submitted answers.
type Service struct {
	provider llm.Provider
	sessions store.SessionRepo
	cfg      Config
	log      *zap.Logger
}

// NewService wires a Service from its dependencies.
func NewService(provider llm.Provider, sessions store.SessionRepo, cfg Config, log *zap.Logger) *Service {
	return &Service{
		provider: provider,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

// Generate produces a new problem for the given difficulty and operations
// and persists it as a session. Provider failures and unusable output are
// absorbed into fallback problems; only a failed session write is an error,
// since without a stored session the problem cannot be answered.
func (s *Service) Generate(ctx context.Context, difficulty Difficulty, ops []Operation) (*GeneratedProblem, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	callCtx = llm.WithPurpose(callCtx, "problem-gen")

	var problem Problem
	resp, err := s.provider.Complete(callCtx, llm.Request{
		System:      generationSystem,
		Prompt:      buildGenerationPrompt(difficulty, ops),
		MaxTokens:   s.cfg.GenerateMaxTokens,
		Temperature: s.cfg.GenerateTemperature,
	})
	if err != nil {
		s.log.Warn("problem generation failed, serving fallback",
			zap.String("difficulty", string(difficulty)),
			zap.Error(err),
		)
		problem = parseFallback
	} else {
		problem = ExtractProblem(resp.Text)
	}

	id, err := s.sessions.InsertSession(ctx, problem.Text, problem.Answer)
	if err != nil {
		return nil, fmt.Errorf("save problem: %w", err)
	}

	return &GeneratedProblem{Problem: problem, SessionID: id}, nil
}

// Submit judges an answer against the stored session and returns the
// verdict with feedback. The caller's answer is compared exactly; the
// stored answer is authoritative. An unknown session is a hard failure,
// but a failed submission-history write is not: the verdict has already
// been decided and is returned regardless.
func (s *Service) Submit(ctx context.Context, sessionID string, userAnswer float64) (*Verdict, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	isCorrect := userAnswer == sess.CorrectAnswer

	var feedback string
	if isCorrect {
		feedback = correctFeedback
	} else {
		feedback = s.generateFeedback(ctx, sess, userAnswer)
	}

	sub := &store.Submission{
		SessionID:    sess.ID,
		UserAnswer:   userAnswer,
		IsCorrect:    isCorrect,
		FeedbackText: feedback,
	}
	if err := s.sessions.InsertSubmission(ctx, sub); err != nil {
		s.log.Warn("failed to record submission",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}

	return &Verdict{
		IsCorrect:     isCorrect,
		Feedback:      feedback,
		CorrectAnswer: sess.CorrectAnswer,
	}, nil
}

// generateFeedback asks the provider for tutoring feedback on an incorrect
// answer, substituting fallbackFeedback when the provider cannot deliver.
func (s *Service) generateFeedback(ctx context.Context, sess *store.Session, userAnswer float64) string {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	callCtx = llm.WithPurpose(callCtx, "feedback")

	resp, err := s.provider.Complete(callCtx, llm.Request{
		System:      feedbackSystem,
		Prompt:      buildFeedbackPrompt(sess.ProblemText, sess.CorrectAnswer, userAnswer),
		MaxTokens:   s.cfg.FeedbackMaxTokens,
		Temperature: s.cfg.FeedbackTemperature,
	})
	if err != nil {
		s.log.Warn("feedback generation failed, serving fallback",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return fallbackFeedback
	}

	feedback := strings.TrimSpace(resp.Text)
	if feedback == "" {
		return fallbackFeedback
	}
	return feedback
}
