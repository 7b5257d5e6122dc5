package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/logger"
)

// ErrTooManySteps is returned when the model keeps calling tools past the step limit.
var ErrTooManySteps = errors.New("assistant did not finish within the step limit")

const systemPrompt = `You are a life coach assistant that manages the user's calendar.

Context:
- Today: %s (%s)
- Active hours: %s to %s

Rules:
1. Use the tools to read and change the calendar. Never invent entry IDs; list entries first.
2. Dates are YYYY-MM-DD and times are HH:MM in 24-hour format.
3. Work, meetings, appointments and sleep are fixed. Entries with flexible=false are fixed too.
4. When a tool reports hard_conflict, tell the user what blocks the slot and ask before trying another time.
5. When a tool reports unplaceable, explain that the day is too full to move what is in the way.
6. Tell the user about anything that was relocated or any plan item that moved.
7. Keep answers short.`

// SystemPrompt builds the instructions for a session starting at now.
func SystemPrompt(now time.Time, dayStart, dayEnd string) string {
	today := dateutil.Today(now)
	return fmt.Sprintf(systemPrompt, dateutil.Format(today), today.Weekday(), dayStart, dayEnd)
}

// Session is a conversation in which the model may call calendar tools.
type Session struct {
	client   Client
	toolbox  *Toolbox
	maxSteps int
	messages []Message
}

// NewSession creates a session. maxSteps bounds the model turns per question.
func NewSession(client Client, toolbox *Toolbox, system string, maxSteps int) *Session {
	if maxSteps < 1 {
		maxSteps = 1
	}
	s := &Session{client: client, toolbox: toolbox, maxSteps: maxSteps}
	if system != "" {
		s.messages = append(s.messages, Message{Role: RoleSystem, Content: system})
	}
	return s
}

// Ask sends prompt and runs tool calls until the model answers.
func (s *Session) Ask(ctx context.Context, prompt string) (string, error) {
	s.messages = append(s.messages, Message{Role: RoleUser, Content: prompt})
	tools := Tools()

	for step := 1; step <= s.maxSteps; step++ {
		reply, err := s.client.Complete(ctx, s.messages, tools)
		if err != nil {
			return "", fmt.Errorf("step %d: %w", step, err)
		}
		s.messages = append(s.messages, Message{
			Role:      RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		if len(reply.ToolCalls) == 0 {
			return strings.TrimSpace(reply.Content), nil
		}

		for _, call := range reply.ToolCalls {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			logger.Info("assistant tool call", "step", step, "tool", call.Name)
			s.messages = append(s.messages, Message{
				Role:       RoleTool,
				Content:    s.toolbox.Call(ctx, call),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	logger.Warn("assistant step limit reached", "steps", s.maxSteps)
	return "", ErrTooManySteps
}

// Messages returns the conversation so far.
func (s *Session) Messages() []Message {
	return s.messages
}
