package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/voyagent/voyagent-core/core/audio"
	"github.com/voyagent/voyagent-core/core/synthesis"
)

type speechStream struct {
	ws *websocket.Conn
	mu sync.Mutex

	textBuffer   []string
	textBufferMu sync.Mutex

	options synthesis.GeneratorOptions

	textComplete bool
	cancelled    bool
	closed       bool
}

// NewSpeechGenerator opens a speak websocket and returns the generation
// stream over it.
func (c *SynthesisClient) NewSpeechGenerator(ctx context.Context, opts ...synthesis.GeneratorOption) (synthesis.SpeechGenerator, error) {
	stream := &speechStream{
		options: synthesis.GeneratorOptions{
			AudioCallback:       func([]byte) {},
			MarkCallback:        func() {},
			SpeechEndedCallback: func() {},
			ErrorCallback:       func(error) {},
			EncodingInfo:        audio.GetDefaultEncodingInfo(),
		},
	}

	for _, opt := range opts {
		opt(&stream.options)
	}

	var err error
	if stream.ws, err = connectWebsocket(c.voice, stream.options.EncodingInfo); err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}

	go stream.processIncomingMessages(ctx)

	return stream, nil
}

func connectWebsocket(voice Voice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (s *speechStream) processIncomingMessages(_ context.Context) {
	for {
		msgType, msg, err := s.ws.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" {
				log.Printf("Websocket read error: %v", err)
				s.options.ErrorCallback(fmt.Errorf("speech stream interrupted: %w", err))
			}
			if err := s.Cancel(); err != nil {
				_ = s.Close() // Ignored on purpose
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				s.options.AudioCallback(msg)
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}

			if parsedMsg.Type == "Flushed" {
				s.onFlushed()
			}
		}
	}
}

// onFlushed confirms the oldest buffered segment, notifies the end once
// nothing is left, and kicks off the next segment otherwise.
func (s *speechStream) onFlushed() {
	s.textBufferMu.Lock()
	defer s.textBufferMu.Unlock()

	if len(s.textBuffer) > 0 {
		s.options.MarkCallback()
		s.textBuffer = s.textBuffer[1:]
	}

	if len(s.textBuffer) == 0 && s.textComplete {
		s.options.SpeechEndedCallback()
		_ = s.Close()
		return
	}

	if len(s.textBuffer) > 0 {
		if err := s.sendWebsocketMessage(sendTextMsg(s.textBuffer[0])); err != nil {
			log.Printf("Failed to send deepgram text: %v", err)
		}
	}
	if len(s.textBuffer) > 1 {
		if err := s.sendWebsocketMessage(flushMsg); err != nil {
			log.Printf("Failed to flush deepgram buffer: %v", err)
		}
	}
}

func (s *speechStream) SendText(text string) error {
	if s.closed {
		return fmt.Errorf("speech stream closed")
	} else if s.cancelled {
		return fmt.Errorf("speech stream cancelled")
	} else if s.textComplete {
		return fmt.Errorf("speech stream text already completed")
	}

	s.textBufferMu.Lock()
	defer s.textBufferMu.Unlock()

	if len(s.textBuffer) == 0 {
		s.textBuffer = append(s.textBuffer, "")
	}

	if len(s.textBuffer) == 1 {
		if err := s.sendWebsocketMessage(sendTextMsg(text)); err != nil {
			return fmt.Errorf("failed to send websocket send text message: %w", err)
		}
	}
	s.textBuffer[len(s.textBuffer)-1] += text
	return nil
}

func (s *speechStream) Mark() error {
	if s.closed {
		return fmt.Errorf("speech stream closed")
	} else if s.cancelled {
		return fmt.Errorf("speech stream cancelled")
	} else if s.textComplete {
		return fmt.Errorf("speech stream text already completed")
	}

	s.textBufferMu.Lock()
	defer s.textBufferMu.Unlock()

	if len(s.textBuffer) == 1 {
		if err := s.sendWebsocketMessage(flushMsg); err != nil {
			return fmt.Errorf("failed to send websocket flush message: %w", err)
		}
	}

	// NOTE: Deepgram sometimes drops text passed right after a flush unless
	// there is a break; buffering a fresh segment lets the remaining text go
	// out after the flush confirmation.
	s.textBuffer = append(s.textBuffer, "")

	return nil
}

func (s *speechStream) EndOfText() error {
	if s.closed {
		return fmt.Errorf("speech stream closed")
	} else if s.cancelled {
		return fmt.Errorf("speech stream cancelled")
	}

	s.textBufferMu.Lock()
	defer s.textBufferMu.Unlock()

	s.textComplete = true
	if len(s.textBuffer) == 0 || (len(s.textBuffer) == 1 && s.textBuffer[0] == "") {
		s.textBuffer = nil
		s.options.SpeechEndedCallback()
		return s.Close()
	}

	if err := s.sendWebsocketMessage(flushMsg); err != nil {
		return fmt.Errorf("failed to send websocket flush message: %w", err)
	}
	return nil
}

func (s *speechStream) Cancel() error {
	if s.closed {
		return fmt.Errorf("speech stream closed")
	}
	if s.cancelled {
		return nil
	}

	s.cancelled = true
	if err := s.sendWebsocketMessage(clearMsg); err != nil {
		return fmt.Errorf("failed to send websocket clear message: %w", err)
	}

	return s.Close()
}

func (s *speechStream) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	if err := s.sendWebsocketMessage(closeMsg); err != nil {
		if aggressiveCloseErr := s.ws.Close(); aggressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", errors.Join(err, aggressiveCloseErr))
		}
	}
	return nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

type websocketTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	sendTextMsg = func(text string) websocketTextMessage {
		return websocketTextMessage{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (s *speechStream) sendWebsocketMessage(msg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}

	if err := s.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
