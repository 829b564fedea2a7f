package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/mathsprint/internal/llm"
	"github.com/abhisek/mathsprint/internal/store"
)

// fakeSessionRepo is an in-memory SessionRepo with injectable failures.
type fakeSessionRepo struct {
	sessions    map[string]*store.Session
	submissions []store.Submission

	insertSessionErr    error
	insertSubmissionErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*store.Session)}
}

func (f *fakeSessionRepo) InsertSession(_ context.Context, problemText string, correctAnswer float64) (string, error) {
	if f.insertSessionErr != nil {
		return "", f.insertSessionErr
	}
	id := "session-1"
	f.sessions[id] = &store.Session{ID: id, ProblemText: problemText, CorrectAnswer: correctAnswer}
	return id, nil
}

func (f *fakeSessionRepo) GetSession(_ context.Context, id string) (*store.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) InsertSubmission(_ context.Context, sub *store.Submission) error {
	if f.insertSubmissionErr != nil {
		return f.insertSubmissionErr
	}
	f.submissions = append(f.submissions, *sub)
	return nil
}

func newTestService(provider llm.Provider, repo store.SessionRepo) *Service {
	return NewService(provider, repo, DefaultConfig(), zap.NewNop())
}

func TestGenerateHappyPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: `{"problem_text": "A shop sells pencils in packs of 4. How many pencils are in 6 packs?", "final_answer": 24}`,
	})
	repo := newFakeSessionRepo()
	svc := newTestService(mock, repo)

	gen, err := svc.Generate(context.Background(), DifficultyEasy, AllOperations)
	require.NoError(t, err)

	assert.Equal(t, "session-1", gen.SessionID)
	assert.Equal(t, 24.0, gen.Answer)

	// The stored answer must match what the caller is judged against.
	stored := repo.sessions[gen.SessionID]
	require.NotNil(t, stored)
	assert.Equal(t, gen.Text, stored.ProblemText)
	assert.Equal(t, gen.Answer, stored.CorrectAnswer)
}

func TestGenerateProviderFailureServesFallback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")},
	})
	repo := newFakeSessionRepo()
	svc := newTestService(mock, repo)

	gen, err := svc.Generate(context.Background(), DifficultyMedium, AllOperations)
	require.NoError(t, err)

	assert.Equal(t, parseFallback.Text, gen.Text)
	assert.Equal(t, parseFallback.Answer, gen.Answer)
	assert.NotEmpty(t, gen.SessionID)
}

func TestGenerateUnusableOutputServesFallback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: `{"problem_text": "incomplete"}`,
	})
	repo := newFakeSessionRepo()
	svc := newTestService(mock, repo)

	gen, err := svc.Generate(context.Background(), DifficultyEasy, AllOperations)
	require.NoError(t, err)

	// Fallback problems are persisted and playable like any other.
	assert.Equal(t, validationFallback.Text, gen.Text)
	assert.Equal(t, validationFallback.Answer, repo.sessions[gen.SessionID].CorrectAnswer)
}

func TestGenerateSessionWriteFailureIsTerminal(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: `{"problem_text": "What is 3 + 4?", "final_answer": 7}`,
	})
	repo := newFakeSessionRepo()
	repo.insertSessionErr = errors.New("disk full")
	svc := newTestService(mock, repo)

	_, err := svc.Generate(context.Background(), DifficultyEasy, AllOperations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save problem")
}

func seedSession(repo *fakeSessionRepo) string {
	id, _ := repo.InsertSession(context.Background(),
		"Tom has 8 apples. He eats 3 apples. How many apples does Tom have left?", 5)
	return id
}

func TestSubmitCorrectAnswer(t *testing.T) {
	mock := llm.NewMockProvider()
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	svc := newTestService(mock, repo)

	v, err := svc.Submit(context.Background(), id, 5)
	require.NoError(t, err)

	assert.True(t, v.IsCorrect)
	assert.Equal(t, correctFeedback, v.Feedback)
	assert.Equal(t, 5.0, v.CorrectAnswer)

	// Correct answers never consult the provider.
	assert.Equal(t, 0, mock.CallCount())
}

func TestSubmitIncorrectAnswerGetsTutoringFeedback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: "Almost there! 🌟 Remember, eating apples takes them away, so subtract 3 from 8. Try counting down from 8. You can do it! 💪",
	})
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	svc := newTestService(mock, repo)

	v, err := svc.Submit(context.Background(), id, 4)
	require.NoError(t, err)

	assert.False(t, v.IsCorrect)
	assert.Contains(t, v.Feedback, "subtract 3 from 8")
	assert.Equal(t, 5.0, v.CorrectAnswer)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSubmitFeedbackProviderFailureStillReturnsVerdict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrRateLimit{Err: errors.New("quota exceeded")},
	})
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	svc := newTestService(mock, repo)

	v, err := svc.Submit(context.Background(), id, 4)
	require.NoError(t, err)

	assert.False(t, v.IsCorrect)
	assert.Equal(t, fallbackFeedback, v.Feedback)
	assert.Equal(t, 5.0, v.CorrectAnswer)
}

func TestSubmitUnknownSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(llm.NewMockProvider(), repo)

	_, err := svc.Submit(context.Background(), "no-such-session", 5)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.Empty(t, repo.submissions)
}

func TestSubmitRecordsSubmission(t *testing.T) {
	mock := llm.NewMockProvider()
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	svc := newTestService(mock, repo)

	_, err := svc.Submit(context.Background(), id, 5)
	require.NoError(t, err)

	require.Len(t, repo.submissions, 1)
	sub := repo.submissions[0]
	assert.Equal(t, id, sub.SessionID)
	assert.Equal(t, 5.0, sub.UserAnswer)
	assert.True(t, sub.IsCorrect)
	assert.Equal(t, correctFeedback, sub.FeedbackText)
}

func TestSubmitAuditWriteFailureDoesNotFailVerdict(t *testing.T) {
	mock := llm.NewMockProvider()
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	repo.insertSubmissionErr = errors.New("disk full")
	svc := newTestService(mock, repo)

	v, err := svc.Submit(context.Background(), id, 5)
	require.NoError(t, err)
	assert.True(t, v.IsCorrect)
}

func TestSubmitIsIdempotentPerSession(t *testing.T) {
	mock := llm.NewMockProvider()
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	svc := newTestService(mock, repo)

	first, err := svc.Submit(context.Background(), id, 5)
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), id, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.submissions, 2)
}

func TestSubmitStrictEquality(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Close! Check your rounding. 🔍"},
	)
	repo := newFakeSessionRepo()
	id := seedSession(repo)
	svc := newTestService(mock, repo)

	v, err := svc.Submit(context.Background(), id, 5.0001)
	require.NoError(t, err)
	assert.False(t, v.IsCorrect)
}
