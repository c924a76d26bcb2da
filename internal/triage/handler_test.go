package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJobRecorder struct {
	pending []*JobRecord
	putErr  error
}

func (j *stubJobRecorder) PutPending(_ context.Context, job *JobRecord) error {
	if j.putErr != nil {
		return j.putErr
	}
	j.pending = append(j.pending, job)
	return nil
}

type stubJobReader struct {
	job    *JobRecord
	getErr error
}

func (j *stubJobReader) GetJob(_ context.Context, jobID string) (*JobRecord, error) {
	if j.getErr != nil {
		return nil, j.getErr
	}
	if j.job == nil || j.job.JobID != jobID {
		return nil, ErrJobNotFound
	}
	return j.job, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandlerStartMintsConversationID(t *testing.T) {
	processor := &stubProcessor{reply: "Olá! Qual é o seu nome completo?"}
	handler := NewHandler(processor, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", nil)
	rec := httptest.NewRecorder()
	handler.Start(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "Olá! Qual é o seu nome completo?", resp.Reply)

	processor.mu.Lock()
	defer processor.mu.Unlock()
	require.Len(t, processor.calls, 1)
	assert.True(t, strings.HasSuffix(processor.calls[0], "|"))
}

func TestHandlerStartKeepsProvidedConversationID(t *testing.T) {
	processor := &stubProcessor{reply: "oi"}
	handler := NewHandler(processor, nil, nil, nil, nil)

	rec := postJSON(t, handler.Start, "/conversations/start", StartRequest{ConversationID: "conv-7"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conv-7", resp.ConversationID)
}

func TestHandlerMessageReturnsReply(t *testing.T) {
	processor := &stubProcessor{reply: "Prazer, Maria!"}
	handler := NewHandler(processor, nil, nil, nil, nil)

	rec := postJSON(t, handler.Message, "/conversations/message", MessageRequest{
		ConversationID: "conv-1",
		Message:        "Maria Silva",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, "Prazer, Maria!", resp.Reply)

	processor.mu.Lock()
	defer processor.mu.Unlock()
	assert.Equal(t, []string{"conv-1|Maria Silva"}, processor.calls)
}

func TestHandlerMessageRequiresConversationID(t *testing.T) {
	handler := NewHandler(&stubProcessor{}, nil, nil, nil, nil)

	rec := postJSON(t, handler.Message, "/conversations/message", MessageRequest{Message: "oi"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMessageRejectsInvalidJSON(t *testing.T) {
	handler := NewHandler(&stubProcessor{}, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	handler.Message(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMessageReportsProcessorFailure(t *testing.T) {
	processor := &stubProcessor{handErr: errors.New("redis down")}
	handler := NewHandler(processor, nil, nil, nil, nil)

	rec := postJSON(t, handler.Message, "/conversations/message", MessageRequest{
		ConversationID: "conv-1",
		Message:        "oi",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlerMessageAsyncEnqueuesJob(t *testing.T) {
	queue := NewMemoryQueue(8)
	publisher := NewPublisher(queue, nil)
	jobs := &stubJobRecorder{}
	handler := NewHandler(&stubProcessor{}, publisher, jobs, nil, nil)

	rec := postJSON(t, handler.MessageAsync, "/conversations/message/async", MessageRequest{
		ConversationID: "conv-1",
		Message:        "oi",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp AsyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, string(JobStatusPending), resp.Status)

	require.Len(t, jobs.pending, 1)
	assert.Equal(t, resp.JobID, jobs.pending[0].JobID)

	messages, err := queue.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func TestHandlerMessageAsyncWithoutPublisher(t *testing.T) {
	handler := NewHandler(&stubProcessor{}, nil, nil, nil, nil)

	rec := postJSON(t, handler.MessageAsync, "/conversations/message/async", MessageRequest{
		ConversationID: "conv-1",
		Message:        "oi",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlerJobReturnsRecord(t *testing.T) {
	reader := &stubJobReader{job: &JobRecord{JobID: "job-1", Status: JobStatusCompleted, Reply: "pronto"}}
	handler := NewHandler(&stubProcessor{}, nil, nil, reader, nil)

	router := chi.NewRouter()
	router.Get("/conversations/jobs/{jobID}", handler.Job)

	req := httptest.NewRequest(http.MethodGet, "/conversations/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp JobRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, JobStatusCompleted, resp.Status)
	assert.Equal(t, "pronto", resp.Reply)
}

func TestHandlerJobNotFound(t *testing.T) {
	reader := &stubJobReader{}
	handler := NewHandler(&stubProcessor{}, nil, nil, reader, nil)

	router := chi.NewRouter()
	router.Get("/conversations/jobs/{jobID}", handler.Job)

	req := httptest.NewRequest(http.MethodGet, "/conversations/jobs/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
