// Package realtime relays voice-interview traffic between websocket
// clients and the AI interviewer.
package realtime

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/interview"
)

// FallbackMessage is sent when the interviewer cannot produce a reply.
const FallbackMessage = "Something went wrong. Please try again."

const maxFrameBytes = 10 << 20 // audio clips arrive base64-encoded

// InboundFrame is a client message.
type InboundFrame struct {
	Type string `json:"type"`
	// Audio is a data URL: "data:audio/webm;base64,...".
	Audio string `json:"audio,omitempty"`
}

// OutboundFrame is an interviewer message.
type OutboundFrame struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	IsQuestion bool   `json:"isQuestion"`
}

// conversation is the per-connection interview state. History lives
// only as long as the connection.
type conversation struct {
	history []interview.Turn
}

// Relay upgrades websocket connections and bridges frames to the
// interviewer.
type Relay struct {
	interviewer interview.Interviewer
	logger      *zap.Logger
	upgrader    websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*conversation
}

// NewRelay creates the relay.
func NewRelay(interviewer interview.Interviewer, logger *zap.Logger) (*Relay, error) {
	if interviewer == nil {
		return nil, errors.New("interviewer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		interviewer: interviewer,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*conversation),
	}, nil
}

// Handler serves the websocket endpoint.
func (r *Relay) Handler(c echo.Context) error {
	conn, err := r.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	id := uuid.NewString()
	r.open(id)
	defer r.close(id)

	logger := r.logger.With(zap.String("connection_id", id))
	logger.Info("interview client connected")

	conn.SetReadLimit(maxFrameBytes)

	if err := conn.WriteJSON(OutboundFrame{
		Type:       "ai_response",
		Text:       interview.OpeningMessage,
		IsQuestion: true,
	}); err != nil {
		logger.Warn("failed to send opening question", zap.Error(err))
		return nil
	}

	ctx := c.Request().Context()
	for {
		var frame InboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("interview client closed unexpectedly", zap.Error(err))
			} else {
				logger.Info("interview client disconnected")
			}
			return nil
		}

		if frame.Type != "user_audio" {
			continue
		}

		reply := r.respond(ctx, id, frame, logger)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("failed to write interviewer reply", zap.Error(err))
			return nil
		}
	}
}

// respond runs one exchange. Failures never surface to the client as
// errors; they become the fallback message.
func (r *Relay) respond(ctx context.Context, id string, frame InboundFrame, logger *zap.Logger) OutboundFrame {
	audio, err := decodeAudio(frame.Audio)
	if err != nil {
		logger.Warn("bad audio frame", zap.Error(err))
		return OutboundFrame{Type: "ai_response", Text: FallbackMessage}
	}

	history := r.snapshot(id)
	text, err := r.interviewer.Respond(ctx, history, audio)
	if err != nil {
		logger.Warn("interviewer reply failed", zap.Error(err))
		return OutboundFrame{Type: "ai_response", Text: FallbackMessage}
	}

	r.append(id,
		interview.Turn{Speaker: interview.SpeakerUser, Audio: audio},
		interview.Turn{Speaker: interview.SpeakerInterviewer, Text: text},
	)
	return OutboundFrame{Type: "ai_response", Text: text, IsQuestion: interview.IsQuestion(text)}
}

// decodeAudio strips the data-URL prefix and decodes the payload.
func decodeAudio(dataURL string) ([]byte, error) {
	if dataURL == "" {
		return nil, errors.New("missing audio payload")
	}
	payload := dataURL
	if idx := strings.IndexByte(dataURL, ','); idx >= 0 {
		payload = dataURL[idx+1:]
	}
	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("audio payload is not valid base64")
	}
	if len(audio) == 0 {
		return nil, errors.New("empty audio payload")
	}
	return audio, nil
}

func (r *Relay) open(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &conversation{
		history: []interview.Turn{
			{Speaker: interview.SpeakerInterviewer, Text: interview.OpeningMessage},
		},
	}
}

func (r *Relay) close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Relay) snapshot(id string) []interview.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.sessions[id]
	if !ok {
		return nil
	}
	return append([]interview.Turn{}, conv.history...)
}

func (r *Relay) append(id string, turns ...interview.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.sessions[id]; ok {
		conv.history = append(conv.history, turns...)
	}
}

// ActiveSessions reports how many interview conversations are open.
func (r *Relay) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
