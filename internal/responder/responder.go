// Package responder generates free-form replies for messages that arrive
// after a triage is complete. Providers are tried in order with a canned
// Portuguese fallback so the patient always gets an answer.
package responder

import (
	"context"
	"strings"
	"time"

	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

const systemPrompt = `Você é um assistente de triagem psicológica. O paciente já concluiu a avaliação estruturada.
Responda com empatia e profissionalismo, em português, de forma breve.
Não faça diagnósticos, não prescreva medicamentos e oriente a aguardar o contato da equipe médica.`

const defaultTimeout = 10 * time.Second

// Client generates one reply for free-form patient text.
type Client interface {
	Generate(ctx context.Context, text string) (string, error)
}

// Chain tries each provider in order and falls back to canned replies.
type Chain struct {
	clients []Client
	timeout time.Duration
	logger  *logging.Logger
}

// NewChain builds a provider chain. A non-positive timeout falls back to
// the default; clients may be empty, leaving only the canned replies.
func NewChain(timeout time.Duration, logger *logging.Logger, clients ...Client) *Chain {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Chain{
		clients: clients,
		timeout: timeout,
		logger:  logger,
	}
}

var _ triage.Responder = (*Chain)(nil)

// Respond returns the first successful provider reply, or a canned one.
func (c *Chain) Respond(ctx context.Context, text string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for _, client := range c.clients {
		reply, err := client.Generate(ctx, text)
		if err != nil {
			c.logger.Warn("responder: provider failed, trying next", "error", err)
			continue
		}
		if strings.TrimSpace(reply) != "" {
			return strings.TrimSpace(reply)
		}
	}
	return cannedReply(text)
}

// cannedReply covers the no-provider and all-providers-down paths with
// fixed Portuguese responses keyed on simple greetings.
func cannedReply(text string) string {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "olá") || strings.Contains(lowered, "oi") {
		return `🏥 Olá! Sou seu assistente de triagem psicológica.

Sua avaliação já foi concluída e nossa equipe fará contato.

Se precisar, continue me contando como você está se sentindo.`
	}
	return "Entendo. Continue me contando mais sobre como você está se sentindo."
}
