package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stormstream/storm-assistant/internal/extract"
	"github.com/stormstream/storm-assistant/internal/schedule"
	"github.com/stormstream/storm-assistant/internal/weather"
)

// WeatherFetcher runs the extraction-to-snapshot weather pipeline.
type WeatherFetcher interface {
	SnapshotFor(ctx context.Context, locationText string, days int) (*weather.Snapshot, error)
}

// SessionStore persists conversation turns per session.
type SessionStore interface {
	Append(sessionID string, turns ...Turn)
	Turns(sessionID string) []Turn
}

// Options tune the LLM call and history replay.
type Options struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	HistoryLimit int
	ForecastDays int
}

// Reply is the outcome of one chat turn.
type Reply struct {
	SessionID string             `json:"session_id"`
	Text      string             `json:"reply"`
	Location  string             `json:"location,omitempty"`
	Weather   *weather.Snapshot  `json:"weather,omitempty"`
	DayIndex  int                `json:"day_index"`
	Schedule  *schedule.Schedule `json:"schedule,omitempty"`
}

// Service orchestrates one conversation turn: location extraction, the
// weather pipeline, prompt assembly, and the chat-completion call.
type Service struct {
	llm      *openai.Client
	weather  WeatherFetcher
	sessions SessionStore
	opts     Options
	now      func() time.Time
	log      *zap.Logger
}

func NewService(llm *openai.Client, fetcher WeatherFetcher, sessions SessionStore, opts Options, log *zap.Logger) *Service {
	return &Service{
		llm:      llm,
		weather:  fetcher,
		sessions: sessions,
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

// SendMessage runs a full turn. The weather path degrades silently: a
// geocode miss, provider error, or malformed payload never blocks the LLM
// call. An LLM failure aborts the turn with the upstream error message.
func (s *Service) SendMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	location := extract.Location(message)

	var snapshot *weather.Snapshot
	if location != "" {
		snap, err := s.weather.SnapshotFor(ctx, location, s.opts.ForecastDays)
		if err != nil {
			// Degraded mode: answer without the real-time context.
			s.log.Warn("weather fetch failed; continuing without context",
				zap.String("location", location), zap.Error(err))
		} else {
			snapshot = snap
		}
	}

	history := s.sessions.Turns(sessionID)
	messages := s.buildMessages(snapshot, history, message)

	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.opts.Model,
		Messages:    messages,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("chat completion: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: response has no choices")
	}

	replyText := resp.Choices[0].Message.Content
	s.sessions.Append(sessionID,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: replyText},
	)

	reply := &Reply{
		SessionID: sessionID,
		Text:      replyText,
		Schedule:  schedule.Parse(replyText),
	}
	if snapshot != nil {
		reply.Location = location
		reply.Weather = snapshot
		reply.DayIndex = extract.ForecastDayIndex(message, snapshot.Forecast.ForecastDay, s.now())
	}
	return reply, nil
}

// buildMessages assembles system prompt, replayed history, and the new user
// turn. History replay is capped at the most recent HistoryLimit turns; the
// session store retains the rest.
func (s *Service) buildMessages(snapshot *weather.Snapshot, history []Turn, message string) []openai.ChatCompletionMessage {
	if limit := s.opts.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(snapshot),
	})
	for _, t := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	return messages
}
