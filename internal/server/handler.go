package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/mathsprint/internal/quiz"
	"github.com/abhisek/mathsprint/internal/store"
)

// mathProblemRequest is the single envelope for both actions. UserAnswer is
// a pointer so that a missing field and an explicit 0 stay distinguishable.
type mathProblemRequest struct {
	Action      string   `json:"action"`
	Difficulty  string   `json:"difficulty"`
	ProblemType []string `json:"problemType"`
	SessionID   string   `json:"sessionId"`
	UserAnswer  *float64 `json:"userAnswer"`
}

type problemPayload struct {
	ProblemText string  `json:"problem_text"`
	FinalAnswer float64 `json:"final_answer"`
}

type generateResponse struct {
	Success   bool           `json:"success"`
	Problem   problemPayload `json:"problem"`
	SessionID string         `json:"sessionId"`
}

type submitResponse struct {
	Success       bool    `json:"success"`
	IsCorrect     bool    `json:"isCorrect"`
	Feedback      string  `json:"feedback"`
	CorrectAnswer float64 `json:"correctAnswer"`
}

// handleMathProblem dispatches on the action discriminator.
func (s *Server) handleMathProblem(c *gin.Context) {
	var req mathProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	switch req.Action {
	case "generate":
		s.generate(c, req)
	case "submit":
		s.submit(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": `Invalid action. Use "generate" or "submit"`})
	}
}

func (s *Server) generate(c *gin.Context, req mathProblemRequest) {
	difficulty := quiz.ParseDifficulty(req.Difficulty)
	ops := quiz.NormalizeOperations(req.ProblemType)

	gen, err := s.quiz.Generate(c.Request.Context(), difficulty, ops)
	if err != nil {
		s.log.Error("generate failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate problem"})
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		Success: true,
		Problem: problemPayload{
			ProblemText: gen.Text,
			FinalAnswer: gen.Answer,
		},
		SessionID: gen.SessionID,
	})
}

func (s *Server) submit(c *gin.Context, req mathProblemRequest) {
	if req.SessionID == "" || req.UserAnswer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID and user answer are required"})
		return
	}

	verdict, err := s.quiz.Submit(c.Request.Context(), req.SessionID, *req.UserAnswer)
	if errors.Is(err, store.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem session not found"})
		return
	}
	if err != nil {
		s.log.Error("submit failed", zap.String("session_id", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit answer"})
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Success:       true,
		IsCorrect:     verdict.IsCorrect,
		Feedback:      verdict.Feedback,
		CorrectAnswer: verdict.CorrectAnswer,
	})
}
