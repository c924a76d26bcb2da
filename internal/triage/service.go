package triage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/albertosilva007/triagem-platform/internal/observability/metrics"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// ErrSessionNotFound is returned by SessionStore implementations when no
// session exists for a conversation.
var ErrSessionNotFound = errors.New("triage: session not found")

// SessionStore persists in-progress sessions keyed by conversation id.
type SessionStore interface {
	Load(ctx context.Context, conversationID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
}

// RecordSummary is the subset of a stored record used for follow-up checks.
type RecordSummary struct {
	TotalScore      int       `json:"pontuacao_total"`
	Tier            Tier      `json:"nivel_gravidade"`
	PositiveReasons int       `json:"motivos_positivos"`
	CreatedAt       time.Time `json:"data_triagem"`
}

// RecordStore persists finished triage records and answers follow-up lookups.
type RecordStore interface {
	Save(ctx context.Context, rec *Record) error
	// FindLatest returns the most recent record summary for a national id,
	// or (nil, nil) when the patient has no prior triage.
	FindLatest(ctx context.Context, nationalID string) (*RecordSummary, error)
}

// Notifier delivers one-way alerts for urgent and intense cases. The
// return value reports delivery success; failure never aborts the flow.
type Notifier interface {
	Notify(ctx context.Context, tier Tier, rec *Record) bool
}

// Responder produces free-form replies for messages that arrive outside
// the scripted flow (after completion).
type Responder interface {
	Respond(ctx context.Context, text string) string
}

// Service runs the triage conversation state machine.
type Service struct {
	sessions  SessionStore
	records   RecordStore
	notifier  Notifier
	responder Responder
	detector  *Detector
	policy    Policy
	metrics   *metrics.TriageMetrics
	logger    *logging.Logger

	// locks serializes message processing per conversation. Entries are
	// never evicted; session lifetime is bounded by the store TTL, not
	// by this map.
	locks sync.Map
}

// NewService wires the triage state machine to its collaborators.
// records, notifier and responder may be nil; the corresponding steps
// degrade to log-only behavior.
func NewService(sessions SessionStore, records RecordStore, notifier Notifier, responder Responder, policy Policy, m *metrics.TriageMetrics, logger *logging.Logger) *Service {
	if sessions == nil {
		panic("triage: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sessions:  sessions,
		records:   records,
		notifier:  notifier,
		responder: responder,
		detector:  NewDetector(logger),
		policy:    policy,
		metrics:   m,
		logger:    logger,
	}
}

// restartCommands reset a session to the start stage.
var restartCommands = map[string]bool{
	"reiniciar": true,
	"restart":   true,
	"recomeçar": true,
	"recomecar": true,
}

// Handle processes one inbound message for a conversation and returns the
// reply. Every error path still yields a user-facing reply; the returned
// error exists so hosts can log it.
func (s *Service) Handle(ctx context.Context, conversationID, message string) (string, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveHandleDuration(time.Since(start).Seconds())
	}()

	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.loadOrCreate(ctx, conversationID)
	if err != nil {
		s.logger.Error("triage: failed to load session", "error", err, "conversation_id", conversationID)
		return promptInternalError, err
	}

	s.logger.Info("triage: inbound message",
		"conversation_id", conversationID,
		"stage", sess.Stage,
		"excerpt", excerpt(message, 50),
	)

	if restartCommands[strings.ToLower(strings.TrimSpace(message))] {
		sess.Reset(time.Now())
		if err := s.saveSession(ctx, sess); err != nil {
			return promptInternalError, err
		}
		return promptRestarted, nil
	}

	// The detector runs before any stage handler: a hit forces the urgent
	// protocol regardless of conversational state.
	if _, hit := s.detector.Scan(message); hit {
		s.metrics.ObserveCriticalDetection("scan")
		reply := s.activateUrgentProtocol(ctx, sess)
		if err := s.saveSession(ctx, sess); err != nil {
			return reply, err
		}
		return reply, nil
	}

	var reply string
	switch sess.Stage {
	case StageStart:
		reply = s.handleStart(sess, message)
	case StageIdentity:
		reply = s.handleIdentity(ctx, sess, message)
	case StageReasons:
		reply = s.handleReasons(ctx, sess, message)
	case StageScale:
		reply = s.handleScale(ctx, sess, message)
	default:
		return s.fallbackReply(ctx, message), nil
	}

	if err := s.saveSession(ctx, sess); err != nil {
		return reply, err
	}
	return reply, nil
}

func (s *Service) loadOrCreate(ctx context.Context, conversationID string) (*Session, error) {
	sess, err := s.sessions.Load(ctx, conversationID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	s.metrics.ObserveSessionStarted()
	s.logger.Info("triage: new session", "conversation_id", conversationID)
	return NewSession(conversationID, time.Now()), nil
}

func (s *Service) saveSession(ctx context.Context, sess *Session) error {
	sess.touch(time.Now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Error("triage: failed to save session", "error", err, "conversation_id", sess.ConversationID)
		return err
	}
	return nil
}

// handleStart captures a plausible full name or re-prompts.
func (s *Service) handleStart(sess *Session, message string) string {
	name, ok := parseName(message)
	if !ok {
		return promptAskName
	}
	sess.Identity.Name = name
	sess.Stage = StageIdentity
	return greetName(name)
}

// handleIdentity accumulates national id and phone across turns; both must
// be present before the question stages begin.
func (s *Service) handleIdentity(ctx context.Context, sess *Session, message string) string {
	if id, ok := extractNationalID(message); ok {
		sess.Identity.NationalID = id
	}
	if phone, ok := extractPhone(message); ok {
		sess.Identity.Phone = phone
	}

	if !sess.Identity.Complete() {
		return promptAskDocuments
	}

	sess.Stage = StageReasons

	intro := promptIntroQuestions
	if s.records != nil {
		prior, err := s.records.FindLatest(ctx, sess.Identity.NationalID)
		if err != nil {
			s.logger.Error("triage: follow-up lookup failed", "error", err, "conversation_id", sess.ConversationID)
		} else if prior != nil {
			sess.FollowUp = true
			intro = promptFollowUpIntro
			s.logger.Info("triage: returning patient",
				"conversation_id", sess.ConversationID,
				"previous_tier", prior.Tier.String(),
				"previous_score", prior.TotalScore,
			)
		}
	}

	return intro + "\n\n" + reasonPrompt(0)
}

// handleReasons processes one yes/no answer. Critical reasons answered
// "yes" short-circuit to the urgent protocol.
func (s *Service) handleReasons(ctx context.Context, sess *Session, message string) string {
	value, ok := parseYesNo(message)
	if !ok {
		return reasonPrompt(sess.ReasonCursor)
	}

	q := ReasonQuestions[sess.ReasonCursor]
	sess.Answers.SetReason(q.Field, value)
	sess.ReasonCursor++

	if value && q.Critical {
		s.logger.Error("triage: critical reason answered yes", "field", string(q.Field), "conversation_id", sess.ConversationID)
		s.metrics.ObserveCriticalDetection("reason")
		return s.activateUrgentProtocol(ctx, sess)
	}

	if sess.ReasonCursor < len(ReasonQuestions) {
		return reasonPrompt(sess.ReasonCursor)
	}

	sess.Stage = StageScale
	return scaleIntroPrompt()
}

// handleScale processes one 0-4 answer. Critical scale fields at 3 or
// above short-circuit to the urgent protocol.
func (s *Service) handleScale(ctx context.Context, sess *Session, message string) string {
	value, ok := parseScale(message)
	if !ok {
		return scalePrompt(sess.ScaleCursor)
	}

	q := ScaleQuestions[sess.ScaleCursor]
	sess.Answers.SetScale(q.Field, value)
	sess.ScaleCursor++

	if q.Critical && value >= 3 {
		s.logger.Error("triage: critical symptom intensity", "field", string(q.Field), "value", value, "conversation_id", sess.ConversationID)
		s.metrics.ObserveCriticalDetection("scale")
		return s.activateUrgentProtocol(ctx, sess)
	}

	if sess.ScaleCursor < len(ScaleQuestions) {
		return scalePrompt(sess.ScaleCursor)
	}

	return s.finalize(ctx, sess)
}

// activateUrgentProtocol forces the urgent outcome from any stage: marks
// the suicidal-ideation fields so the record documents why the session
// short-circuited, persists the record and notifies synchronously.
func (s *Service) activateUrgentProtocol(ctx context.Context, sess *Session) string {
	sess.Answers.SuicidalIdeation = 4
	sess.Answers.SuicidalThoughts = true
	sess.Stage = StageComplete

	proto := ProtocolFor(TierUrgent)
	rec := NewRecord(sess.Identity, sess.Answers, TierUrgent, proto.Actions, proto.Recommendations, sess.FollowUp, time.Now())

	saved := s.saveRecord(ctx, rec)
	notified := s.notify(ctx, TierUrgent, rec)
	s.metrics.ObserveCompleted(TierUrgent.String())

	s.logger.Error("triage: urgent protocol activated",
		"conversation_id", sess.ConversationID,
		"record_saved", saved,
		"notified", notified,
	)

	return urgentResponse(saved, notified, s.notifier != nil)
}

// finalize classifies the finished answer set, persists the record,
// dispatches tier-conditioned notifications and renders the summary.
func (s *Service) finalize(ctx context.Context, sess *Session) string {
	tier := s.policy.Classify(&sess.Answers)
	proto := ProtocolFor(tier)
	rec := NewRecord(sess.Identity, sess.Answers, tier, proto.Actions, proto.Recommendations, sess.FollowUp, time.Now())

	saved := s.saveRecord(ctx, rec)

	notified := false
	if proto.Notify {
		notified = s.notify(ctx, tier, rec)
	}
	s.metrics.ObserveCompleted(tier.String())
	sess.Stage = StageComplete

	s.logger.Info("triage: session completed",
		"conversation_id", sess.ConversationID,
		"tier", tier.String(),
		"total_score", rec.TotalScore,
		"positive_reasons", rec.PositiveReasons,
		"critical", rec.CriticalFlag,
		"notified", notified,
	)

	summary := renderSummary(rec, notified)
	if !saved {
		summary += "\n\n⚠️ Não foi possível registrar a triagem agora. Nossa equipe fará o registro manualmente."
	}
	return summary
}

func (s *Service) saveRecord(ctx context.Context, rec *Record) bool {
	if s.records == nil {
		return false
	}
	if err := s.records.Save(ctx, rec); err != nil {
		s.logger.Error("triage: failed to persist record", "error", err, "national_id", rec.Identity.NationalID)
		return false
	}
	return true
}

func (s *Service) notify(ctx context.Context, tier Tier, rec *Record) bool {
	if s.notifier == nil {
		return false
	}
	ok := s.notifier.Notify(ctx, tier, rec)
	s.metrics.ObserveNotification(tier.String(), ok)
	return ok
}

// fallbackReply answers messages that arrive after the triage finished.
func (s *Service) fallbackReply(ctx context.Context, message string) string {
	if s.responder == nil {
		return "Entendo. Continue me contando mais sobre como você está se sentindo."
	}
	return s.responder.Respond(ctx, message)
}

func (s *Service) lockFor(conversationID string) *sync.Mutex {
	actual, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
