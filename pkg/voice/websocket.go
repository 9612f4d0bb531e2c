package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/speech"
)

var (
	_ Session   = (*WSSession)(nil)
	_ Announcer = (*WSSession)(nil)
)

// Event types of the voice WebSocket protocol.
const (
	EventSay        = "say"
	EventOutcome    = "outcome"
	EventError      = "error"
	EventSaid       = "said"
	EventTranscript = "transcript"
)

const (
	writeTimeout = 10 * time.Second

	// DefaultUtteranceMIME is assumed for binary utterance frames.
	DefaultUtteranceMIME = "audio/webm"
)

type sayEvent struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Text  string `json:"text"`
	Audio string `json:"audio,omitempty"`
	MIME  string `json:"mime,omitempty"`
}

type outcomeTurn struct {
	Question string `json:"question"`
	Guess    bool   `json:"guess"`
	Answer   bool   `json:"answer"`
}

type outcomeEvent struct {
	Type       string        `json:"type"`
	Solved     bool          `json:"solved"`
	Turns      []outcomeTurn `json:"turns"`
	Reflection string        `json:"reflection,omitempty"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type clientEvent struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`
}

// WSSessionConfig configures a WSSession.
type WSSessionConfig struct {
	// Transcriber recognizes binary utterance frames. Without it, binary
	// frames are rejected with an error event.
	Transcriber speech.Transcriber

	// UtteranceMIME is the encoding of binary frames. Defaults to
	// DefaultUtteranceMIME.
	UtteranceMIME string

	Logger *slog.Logger
}

// WSSession is a Session over a WebSocket connection. The client plays say
// events and acknowledges each with a said event; it reports speech as
// transcript events or raw binary utterances.
type WSSession struct {
	conn   *websocket.Conn
	asr    speech.Transcriber
	mime   string
	logger *slog.Logger

	writeMu sync.Mutex

	mu           sync.Mutex
	onTranscript func(Transcript)
	pending      map[string]chan struct{}

	utterances chan []byte
	ctx        context.Context
	cancel     context.CancelFunc
	closeCh    chan struct{}
	closeOnce  sync.Once
}

// NewWSSession wraps conn and starts reading from it. The caller must Close
// the session.
func NewWSSession(conn *websocket.Conn, cfg WSSessionConfig) *WSSession {
	s := &WSSession{
		conn:    conn,
		asr:     cfg.Transcriber,
		mime:    cfg.UtteranceMIME,
		logger:  cfg.Logger,
		pending: make(map[string]chan struct{}),
		closeCh: make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.mime == "" {
		s.mime = DefaultUtteranceMIME
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.asr != nil {
		s.utterances = make(chan []byte, 4)
		go s.transcribeLoop()
	}
	go s.readLoop()
	return s
}

func (s *WSSession) OnTranscript(fn func(Transcript)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTranscript = fn
}

func (s *WSSession) Done() <-chan struct{} {
	return s.closeCh
}

// Say sends a say event and waits for the client's said event.
func (s *WSSession) Say(ctx context.Context, u Utterance) error {
	if u.ID == "" {
		u.ID = newEventID()
	}
	ev := sayEvent{Type: EventSay, ID: u.ID, Text: u.Text}
	if u.Audio != nil {
		ev.Audio = base64.StdEncoding.EncodeToString(u.Audio.Data)
		ev.MIME = u.Audio.MIMEType
	}

	played := make(chan struct{})
	s.mu.Lock()
	s.pending[u.ID] = played
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, u.ID)
		s.mu.Unlock()
	}()

	if err := s.send(ev); err != nil {
		return err
	}
	select {
	case <-played:
		return nil
	case <-s.closeCh:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Announce sends the outcome event.
func (s *WSSession) Announce(_ context.Context, o *game.Outcome) error {
	ev := outcomeEvent{
		Type:       EventOutcome,
		Solved:     o.Solved,
		Turns:      make([]outcomeTurn, 0, o.Transcript.Len()),
		Reflection: o.Reflection,
	}
	for _, t := range o.Transcript.Turns() {
		ev.Turns = append(ev.Turns, outcomeTurn{Question: t.Question, Guess: t.Guess, Answer: t.Answer})
	}
	return s.send(ev)
}

// SendError reports a failure to the client.
func (s *WSSession) SendError(msg string) error {
	return s.send(errorEvent{Type: EventError, Message: msg})
}

// Close ends the session and closes the connection.
func (s *WSSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.cancel()
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *WSSession) send(v any) error {
	select {
	case <-s.closeCh:
		return ErrSessionClosed
	default:
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("voice: encode event: %w", err)
	}
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("sending event", "content", truncate(string(data), 500))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("voice: write event: %w", err)
	}
	return nil
}

func (s *WSSession) readLoop() {
	defer s.Close()
	for {
		typ, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("voice client closed")
			} else {
				select {
				case <-s.closeCh:
				default:
					s.logger.Warn("voice read error", "err", err)
				}
			}
			return
		}

		switch typ {
		case websocket.BinaryMessage:
			s.handleUtterance(message)
		case websocket.TextMessage:
			if s.logger.Enabled(context.Background(), slog.LevelDebug) {
				s.logger.Debug("received message", "len", len(message), "content", truncate(string(message), 1000))
			}
			var ev clientEvent
			if err := json.Unmarshal(message, &ev); err != nil {
				s.logger.Warn("malformed voice event", "err", err)
				continue
			}
			s.handleEvent(ev)
		}
	}
}

func (s *WSSession) handleEvent(ev clientEvent) {
	switch ev.Type {
	case EventSaid:
		s.mu.Lock()
		played, ok := s.pending[ev.ID]
		if ok {
			delete(s.pending, ev.ID)
		}
		s.mu.Unlock()
		if ok {
			close(played)
		} else {
			s.logger.Debug("said event for unknown utterance", "id", ev.ID)
		}
	case EventTranscript:
		s.deliver(Transcript{Text: ev.Text, Final: ev.Final})
	default:
		s.logger.Debug("unknown voice event", "type", ev.Type)
	}
}

func (s *WSSession) handleUtterance(audio []byte) {
	if s.asr == nil {
		if err := s.SendError("speech recognition is not enabled; send transcript events"); err != nil {
			s.logger.Debug("send error event", "err", err)
		}
		return
	}
	select {
	case s.utterances <- audio:
	default:
		s.logger.Warn("utterance queue full, dropping", "bytes", len(audio))
	}
}

func (s *WSSession) transcribeLoop() {
	for {
		select {
		case <-s.closeCh:
			return
		case audio := <-s.utterances:
			text, err := s.asr.Transcribe(s.ctx, bytes.NewReader(audio), s.mime)
			if err != nil {
				s.logger.Warn("transcribe utterance", "err", err)
				if err := s.SendError("could not recognize speech"); err != nil {
					s.logger.Debug("send error event", "err", err)
				}
				continue
			}
			s.deliver(Transcript{Text: text, Final: true})
		}
	}
}

func (s *WSSession) deliver(t Transcript) {
	s.mu.Lock()
	fn := s.onTranscript
	s.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
