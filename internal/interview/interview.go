// Package interview wraps the generative-AI interviewer behind a small
// conversational API.
//
// The collaborator speaks through an OpenAI-compatible chat endpoint
// via langchaingo, which covers both Gemini's compatibility surface and
// OpenAI itself. Conversation history is owned by the caller; this
// package is stateless per call.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/config"
)

// SystemPrompt frames the model as the interviewer. The closing line
// is the sentinel the web client watches for.
const SystemPrompt = `You are Mirats AI, a senior technical interviewer.

Rules:
- Automatically detect the user's language.
- Reply in the SAME language as the user.
- Keep responses short and natural.
- Ask only ONE question at a time.
- Interview for Node.js backend role.
- End interview with: "Thank you! Interview complete."`

// OpeningMessage starts every interview.
const OpeningMessage = "Hello! Please tell me about yourself."

// AudioMimeType is the browser capture format the relay forwards.
const AudioMimeType = "audio/webm; codecs=opus"

// ErrEmptyAudio indicates an empty audio payload.
var ErrEmptyAudio = errors.New("empty audio payload")

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerInterviewer Speaker = "interviewer"
)

// Turn is one exchange in an interview conversation. User turns carry
// audio; interviewer turns carry text.
type Turn struct {
	Speaker Speaker
	Text    string
	Audio   []byte
}

// Interviewer produces the next interviewer utterance for a
// conversation.
type Interviewer interface {
	// Respond sends the audio clip as the latest user turn, on top of
	// history, and returns the interviewer's reply.
	Respond(ctx context.Context, history []Turn, audio []byte) (string, error)
}

// Service implements Interviewer on a langchaingo chat model.
type Service struct {
	llm    llms.Model
	cfg    config.InterviewConfig
	logger *zap.Logger
}

// NewService creates the interviewer from configuration.
func NewService(cfg config.InterviewConfig, logger *zap.Logger) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	apiKey := cfg.APIKey.Value()
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating chat client: %w", err)
	}
	return newService(llm, cfg, logger), nil
}

func newService(llm llms.Model, cfg config.InterviewConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{llm: llm, cfg: cfg, logger: logger}
}

// Respond implements Interviewer.
func (s *Service) Respond(ctx context.Context, history []Turn, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt))
	for _, turn := range history {
		messages = append(messages, turn.message())
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.BinaryPart(AudioMimeType, audio)},
	})

	resp, err := s.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(s.cfg.Temperature),
		llms.WithMaxTokens(s.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generating interviewer reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", errors.New("model returned an empty reply")
	}
	return text, nil
}

// IsQuestion reports whether the reply expects an answer. The web
// client uses this to keep the microphone open.
func IsQuestion(text string) bool {
	return strings.Contains(text, "?")
}

func (t Turn) message() llms.MessageContent {
	if t.Speaker == SpeakerInterviewer {
		return llms.TextParts(llms.ChatMessageTypeAI, t.Text)
	}
	if len(t.Audio) > 0 {
		return llms.MessageContent{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.BinaryPart(AudioMimeType, t.Audio)},
		}
	}
	return llms.TextParts(llms.ChatMessageTypeHuman, t.Text)
}
