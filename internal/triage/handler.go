package triage

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// StartRequest opens a conversation. The id is optional; one is minted
// when the channel cannot provide its own.
type StartRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
}

// StartResponse carries the opening prompt of the triage script.
type StartResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// MessageRequest is one inbound patient message.
type MessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// MessageResponse is the scripted reply for one inbound message.
type MessageResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// AsyncResponse acknowledges an enqueued job.
type AsyncResponse struct {
	JobID          string `json:"job_id"`
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
}

// Handler exposes the triage conversation over HTTP. Synchronous
// processing is the default; the async endpoints are used by channels
// that poll for replies.
type Handler struct {
	processor Processor
	publisher *Publisher
	jobs      JobRecorder
	jobReader JobReader
	logger    *logging.Logger
}

// NewHandler creates a conversation handler. publisher, jobs and
// jobReader may be nil; the async endpoints then return 503.
func NewHandler(processor Processor, publisher *Publisher, jobs JobRecorder, jobReader JobReader, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("triage: processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		processor: processor,
		publisher: publisher,
		jobs:      jobs,
		jobReader: jobReader,
		logger:    logger,
	}
}

// Start handles POST /conversations/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("failed to decode start request", "error", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply, err := h.processor.Handle(r.Context(), conversationID, "")
	if err != nil {
		h.logger.Error("failed to start conversation", "error", err, "conversation_id", conversationID)
		http.Error(w, "Failed to start conversation", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, StartResponse{
		ConversationID: conversationID,
		Reply:          reply,
	})
}

// Message handles POST /conversations/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMessage(w, r)
	if !ok {
		return
	}

	reply, err := h.processor.Handle(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		h.logger.Error("failed to process message", "error", err, "conversation_id", req.ConversationID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, MessageResponse{
		ConversationID: req.ConversationID,
		Reply:          reply,
	})
}

// MessageAsync handles POST /conversations/message/async by enqueuing a
// job and returning 202 with the id to poll.
func (h *Handler) MessageAsync(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		http.Error(w, "Async processing not configured", http.StatusServiceUnavailable)
		return
	}

	req, ok := h.decodeMessage(w, r)
	if !ok {
		return
	}

	jobID := uuid.NewString()
	if h.jobs != nil {
		job := &JobRecord{
			JobID:          jobID,
			ConversationID: req.ConversationID,
			Message:        req.Message,
		}
		if err := h.jobs.PutPending(r.Context(), job); err != nil {
			h.logger.Error("failed to record pending job", "error", err, "job_id", jobID)
			http.Error(w, "Failed to enqueue message", http.StatusInternalServerError)
			return
		}
	}

	opts := []PublishOption{}
	if h.jobs == nil {
		opts = append(opts, WithoutJobTracking())
	}
	if err := h.publisher.EnqueueMessage(r.Context(), jobID, req.ConversationID, req.Message, opts...); err != nil {
		h.logger.Error("failed to enqueue message", "error", err, "job_id", jobID)
		http.Error(w, "Failed to enqueue message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, AsyncResponse{
		JobID:          jobID,
		ConversationID: req.ConversationID,
		Status:         string(JobStatusPending),
	})
}

// Job handles GET /conversations/jobs/{jobID}.
func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	if h.jobReader == nil {
		http.Error(w, "Job tracking not configured", http.StatusServiceUnavailable)
		return
	}

	jobID := chi.URLParam(r, "jobID")
	job, err := h.jobReader.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load job", "error", err, "job_id", jobID)
		http.Error(w, "Failed to load job", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) decodeMessage(w http.ResponseWriter, r *http.Request) (MessageRequest, bool) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return MessageRequest{}, false
	}
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	if req.ConversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return MessageRequest{}, false
	}
	return req, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
