package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/mathsprint/internal/llm"
	"github.com/abhisek/mathsprint/internal/quiz"
	"github.com/abhisek/mathsprint/internal/store"
)

const stickerProblem = `{"problem_text":"Sarah has 12 stickers. She gives 5 stickers to her friend. How many stickers does Sarah have left?","final_answer":7}`

func newTestServer(t *testing.T, mock *llm.MockProvider) *Server {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := quiz.NewService(mock, st.SessionRepo(), quiz.DefaultConfig(), zap.NewNop())
	return New(svc, st, zap.NewNop(), false)
}

func postJSON(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/math-problem", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestGenerateThenSubmitCorrect(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: stickerProblem})
	srv := newTestServer(t, mock)

	w := postJSON(t, srv, `{"action":"generate","difficulty":"easy","problemType":["addition"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	gen := decode(t, w)
	assert.Equal(t, true, gen["success"])
	problem := gen["problem"].(map[string]any)
	assert.Equal(t, "Sarah has 12 stickers. She gives 5 stickers to her friend. How many stickers does Sarah have left?", problem["problem_text"])
	assert.Equal(t, 7.0, problem["final_answer"])
	sessionID := gen["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	w = postJSON(t, srv, fmt.Sprintf(`{"action":"submit","sessionId":%q,"userAnswer":7}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)

	sub := decode(t, w)
	assert.Equal(t, true, sub["isCorrect"])
	assert.Equal(t, 7.0, sub["correctAnswer"])
	assert.NotEmpty(t, sub["feedback"])

	// Judging a correct answer never goes back to the provider.
	assert.Equal(t, 1, mock.CallCount())
}

func TestSubmitIncorrectGetsGeneratedFeedback(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: stickerProblem},
		llm.MockResponse{Text: "Good try! 🌟 Giving stickers away means subtracting, so take 5 from 12. Count it out and try again! 💪"},
	)
	srv := newTestServer(t, mock)

	w := postJSON(t, srv, `{"action":"generate"}`)
	sessionID := decode(t, w)["sessionId"].(string)

	w = postJSON(t, srv, fmt.Sprintf(`{"action":"submit","sessionId":%q,"userAnswer":6}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)

	sub := decode(t, w)
	assert.Equal(t, false, sub["isCorrect"])
	assert.Contains(t, sub["feedback"], "subtracting")
	assert.Equal(t, 7.0, sub["correctAnswer"])
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerateWithGarbageProviderOutputStillSucceeds(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "I cannot write word problems today."})
	srv := newTestServer(t, mock)

	w := postJSON(t, srv, `{"action":"generate","difficulty":"hard"}`)
	require.Equal(t, http.StatusOK, w.Code)

	gen := decode(t, w)
	assert.Equal(t, true, gen["success"])
	problem := gen["problem"].(map[string]any)
	assert.Contains(t, problem["problem_text"], "Sarah has 12 stickers")
	assert.NotEmpty(t, gen["sessionId"])
}

func TestSubmitMissingFields(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())

	for _, body := range []string{
		`{"action":"submit"}`,
		`{"action":"submit","sessionId":"abc"}`,
		`{"action":"submit","userAnswer":5}`,
	} {
		w := postJSON(t, srv, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Session ID and user answer are required", decode(t, w)["error"])
	}
}

func TestSubmitZeroAnswerIsNotMissing(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: stickerProblem},
		llm.MockResponse{Text: "Not quite! Try subtracting 5 from 12. ✨"},
	)
	srv := newTestServer(t, mock)

	w := postJSON(t, srv, `{"action":"generate"}`)
	sessionID := decode(t, w)["sessionId"].(string)

	w = postJSON(t, srv, fmt.Sprintf(`{"action":"submit","sessionId":%q,"userAnswer":0}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["isCorrect"])
}

func TestInvalidAction(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())

	w := postJSON(t, srv, `{"action":"delete"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Invalid action. Use "generate" or "submit"`, decode(t, w)["error"])

	w = postJSON(t, srv, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())

	w := postJSON(t, srv, `{"action":`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestSubmitUnknownSession(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())

	w := postJSON(t, srv, `{"action":"submit","sessionId":"00000000-0000-0000-0000-000000000000","userAnswer":5}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Problem session not found", decode(t, w)["error"])
}

func TestSubmitProviderFailureStillAnswers(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: stickerProblem},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("upstream down")}},
	)
	srv := newTestServer(t, mock)

	w := postJSON(t, srv, `{"action":"generate"}`)
	sessionID := decode(t, w)["sessionId"].(string)

	w = postJSON(t, srv, fmt.Sprintf(`{"action":"submit","sessionId":%q,"userAnswer":3}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)

	sub := decode(t, w)
	assert.Equal(t, false, sub["isCorrect"])
	assert.Equal(t, 7.0, sub["correctAnswer"])
	assert.NotEmpty(t, sub["feedback"])
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
