// Package chat builds prompts from session context and relays them to the
// completion gateway.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avatarworks/gateway/internal/apperr"
	"github.com/avatarworks/gateway/internal/llm"
	"github.com/avatarworks/gateway/internal/session"
)

// Sessions is the slice of session state the relay needs.
type Sessions interface {
	Get(token string) (session.Session, bool)
}

// Enricher supplies the bounded résumé excerpt for a known identity.
type Enricher interface {
	Enrichment(ctx context.Context, identityID uuid.UUID) string
}

type Service struct {
	gateway     llm.Gateway
	sessions    Sessions
	enricher    Enricher
	model       string
	temperature float64
}

func NewService(gw llm.Gateway, sessions Sessions, enricher Enricher, model string, temperature float64) *Service {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Service{
		gateway:     gw,
		sessions:    sessions,
		enricher:    enricher,
		model:       model,
		temperature: temperature,
	}
}

// Complete answers a chat message with the session's identity context
// injected. The session must be authenticated; nothing is sent upstream
// otherwise.
func (s *Service) Complete(ctx context.Context, token, userMessage string) (string, error) {
	sess, ok := s.sessions.Get(token)
	if !ok || !sess.Authenticated {
		return "", apperr.Unauthorized("not authenticated")
	}
	if strings.TrimSpace(userMessage) == "" {
		return "", apperr.Validation("message is required")
	}

	parts := []string{fmt.Sprintf("You are speaking with %s.", sess.DisplayName)}
	if snippet := s.enricher.Enrichment(ctx, sess.IdentityID); snippet != "" {
		parts = append(parts, "Here is some information about them: "+snippet)
	}
	parts = append(parts, "User: "+userMessage)

	return s.send(ctx, strings.Join(parts, "\n\n"))
}

// CompleteAnonymous is the lightweight passthrough path: no session read,
// no context injection.
func (s *Service) CompleteAnonymous(ctx context.Context, userMessage string) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", apperr.Validation("message is required")
	}
	return s.send(ctx, userMessage)
}

func (s *Service) send(ctx context.Context, prompt string) (string, error) {
	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Model:       s.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: s.temperature,
	})
	if err != nil {
		return "", apperr.Upstream("completion provider failed", err)
	}
	return resp.Content, nil
}
