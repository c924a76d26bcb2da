// Package notify alerts the medical team about triage outcomes that need
// human follow-up. Telegram is the primary channel; email is an optional
// copy for audit trails.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// MessageSender is the Telegram surface the service depends on.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Config holds the notification routing targets.
type Config struct {
	DoctorChatID    string
	AdminChatID     string
	EmailRecipients []string
}

// Service routes tier-conditioned alerts to the on-call doctor, with an
// admin copy for urgent cases and optional email copies.
type Service struct {
	telegram MessageSender
	email    EmailSender
	cfg      Config
	logger   *logging.Logger
	now      func() time.Time
}

// NewService builds the notification service. telegram and email may be
// nil; missing channels are skipped with a log line.
func NewService(telegram MessageSender, email EmailSender, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		telegram: telegram,
		email:    email,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

var _ triage.Notifier = (*Service)(nil)

// Notify dispatches the alert for a completed triage. The return value
// reports whether the doctor was reached; copies never affect it.
func (s *Service) Notify(ctx context.Context, tier triage.Tier, rec *triage.Record) bool {
	switch tier {
	case triage.TierUrgent:
		return s.notifyUrgent(ctx, rec)
	case triage.TierIntense:
		return s.notifyIntense(ctx, rec)
	default:
		s.logger.Debug("notify: tier does not require notification", "tier", tier.String())
		return false
	}
}

func (s *Service) notifyUrgent(ctx context.Context, rec *triage.Record) bool {
	message := urgentAlertMessage(rec, s.now())

	delivered := s.sendTelegram(ctx, s.cfg.DoctorChatID, message, "doctor")

	if s.cfg.AdminChatID != "" {
		marker := "❌"
		if delivered {
			marker = "✅"
		}
		adminCopy := fmt.Sprintf("🚨 **CASO URGENTE DETECTADO**\n\n%s\n\n*Notificação enviada para o médico responsável: %s*", message, marker)
		s.sendTelegram(ctx, s.cfg.AdminChatID, adminCopy, "admin")
	}

	s.sendEmailCopies(ctx, fmt.Sprintf("Alerta de triagem URGENTE - %s", rec.Identity.Name), message)
	return delivered
}

func (s *Service) notifyIntense(ctx context.Context, rec *triage.Record) bool {
	message := intenseAlertMessage(rec, s.now())
	delivered := s.sendTelegram(ctx, s.cfg.DoctorChatID, message, "doctor")
	s.sendEmailCopies(ctx, fmt.Sprintf("Triagem intensiva - %s", rec.Identity.Name), message)
	return delivered
}

// SendTest sends a connectivity-check message to the admin chat.
func (s *Service) SendTest(ctx context.Context) error {
	if s.telegram == nil {
		return fmt.Errorf("notify: telegram not configured")
	}
	if s.cfg.AdminChatID == "" {
		return fmt.Errorf("notify: admin chat id not configured")
	}
	return s.telegram.SendMessage(ctx, s.cfg.AdminChatID, testMessage(s.now()))
}

func (s *Service) sendTelegram(ctx context.Context, chatID, text, target string) bool {
	if s.telegram == nil {
		s.logger.Warn("notify: telegram not configured, skipping", "target", target)
		return false
	}
	if chatID == "" {
		s.logger.Warn("notify: chat id not configured, skipping", "target", target)
		return false
	}
	if err := s.telegram.SendMessage(ctx, chatID, text); err != nil {
		s.logger.Error("notify: telegram send failed", "error", err, "target", target)
		return false
	}
	return true
}

func (s *Service) sendEmailCopies(ctx context.Context, subject, body string) {
	if s.email == nil || len(s.cfg.EmailRecipients) == 0 {
		return
	}
	for _, recipient := range s.cfg.EmailRecipients {
		msg := EmailMessage{
			To:      recipient,
			Subject: subject,
			Body:    body,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: email copy failed", "error", err, "to", recipient)
		}
	}
}

func urgentAlertMessage(rec *triage.Record, now time.Time) string {
	critical := "NÃO"
	if rec.CriticalFlag {
		critical = "SIM"
	}

	var b strings.Builder
	b.WriteString("🚨 **ALERTA DE TRIAGEM - URGENTE** 🚨\n\n")
	fmt.Fprintf(&b, "👤 **Paciente:** %s\n", orUnknown(rec.Identity.Name))
	fmt.Fprintf(&b, "📱 **Telefone:** %s\n", orUnknown(rec.Identity.Phone))
	fmt.Fprintf(&b, "🆔 **CPF:** %s\n\n", orUnknown(rec.Identity.NationalID))
	fmt.Fprintf(&b, "📊 **Pontuação Total:** %d/40\n", rec.TotalScore)
	b.WriteString("🎯 **Nível:** URGENTE\n\n")
	fmt.Fprintf(&b, "⚠️ **Sintomas Críticos:** %s\n\n", critical)
	fmt.Fprintf(&b, "🕐 **Data/Hora:** %s\n\n", now.Format("02/01/2006 às 15:04"))
	b.WriteString("**AÇÕES NECESSÁRIAS:**\n")
	b.WriteString("• Contato imediato com paciente\n")
	b.WriteString("• Avaliação presencial se necessário\n")
	b.WriteString("• Verificar necessidade de SAMU\n\n")
	b.WriteString("*Sistema de Triagem Psicológica*")
	return b.String()
}

func intenseAlertMessage(rec *triage.Record, now time.Time) string {
	var b strings.Builder
	b.WriteString("🟠 **TRIAGEM INTENSIVA** 🟠\n\n")
	fmt.Fprintf(&b, "👤 **Paciente:** %s\n", orUnknown(rec.Identity.Name))
	fmt.Fprintf(&b, "📱 **Telefone:** %s\n\n", orUnknown(rec.Identity.Phone))
	fmt.Fprintf(&b, "📊 **Pontuação:** %d/40\n", rec.TotalScore)
	b.WriteString("🎯 **Classificação:** INTENSO\n\n")
	b.WriteString("**PROTOCOLO:**\n")
	b.WriteString("• Agendamento psiquiatria em 48h\n")
	b.WriteString("• Acompanhamento psicológico semanal\n")
	b.WriteString("• Monitoramento telefônico\n\n")
	fmt.Fprintf(&b, "🕐 **Triagem:** %s\n\n", now.Format("02/01/2006 às 15:04"))
	b.WriteString("*Prioridade alta - acompanhar evolução*")
	return b.String()
}

func testMessage(now time.Time) string {
	var b strings.Builder
	b.WriteString("🧪 **TESTE DO SISTEMA DE NOTIFICAÇÕES** 🧪\n\n")
	b.WriteString("✅ Bot Telegram funcionando\n")
	b.WriteString("✅ Conexão com API estabelecida\n")
	b.WriteString("✅ Sistema de triagem conectado\n\n")
	fmt.Fprintf(&b, "🕐 **Teste realizado:** %s\n\n", now.Format("02/01/2006 às 15:04"))
	b.WriteString("*Se você recebeu esta mensagem, o sistema está funcionando corretamente!*")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Não informado"
	}
	return s
}
