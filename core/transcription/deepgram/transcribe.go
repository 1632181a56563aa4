// Package deepgram transcribes recorded audio blobs through deepgram's
// listen websocket API. Each transcription opens its own short-lived
// connection: the blob is written in chunks, the stream is closed, and the
// finalized results are accumulated until the server hangs up.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/voyagent/voyagent-core/core/audio"
	"github.com/voyagent/voyagent-core/core/transcription"
)

type Client struct{}

func NewClient() *Client { return &Client{} }

const audioChunkSize = 8192

// Transcribe sends one recorded blob for transcription. It returns once the
// connection is up; the transcript or failure arrives through the callbacks.
func (c *Client) Transcribe(ctx context.Context, blob []byte, opts ...transcription.TranscriptionOption) error {
	options := transcription.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := connectWebsocket(connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	go func() {
		if err := sendBlob(conn, blob); err != nil {
			log.Println("Failed to send audio to deepgram", "error", err)
			conn.Close()
		}
	}()
	go readTranscript(ctx, conn, options)

	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
}

func connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func sendBlob(conn *websocket.Conn, blob []byte) error {
	for start := 0; start < len(blob); start += audioChunkSize {
		end := min(start+audioChunkSize, len(blob))
		if err := conn.WriteMessage(websocket.BinaryMessage, blob[start:end]); err != nil {
			return fmt.Errorf("failed to write audio chunk: %w", err)
		}
	}

	// Tells deepgram to finalize everything buffered and hang up.
	if err := conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	return nil
}

func readTranscript(_ context.Context, conn *websocket.Conn, options transcription.TranscriptionOptions) {
	var accumulatedTranscript string

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" {
				log.Println("Failed to read deepgram websocket message", "error", err)
			}
			conn.Close()

			transcript := strings.TrimSpace(accumulatedTranscript)
			if transcript == "" {
				if options.ErrorCallback != nil {
					options.ErrorCallback(fmt.Errorf("no transcript produced"))
				}
				return
			}
			if options.TranscriptCallback != nil {
				options.TranscriptCallback(transcript)
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		var parsedMsg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &parsedMsg); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			continue
		}

		if api.TypeResponse(parsedMsg.Type) != api.TypeMessageResponse {
			continue
		}

		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			continue
		}
		if !msgResp.IsFinal || len(msgResp.Channel.Alternatives) == 0 {
			continue
		}
		if transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript); transcript != "" {
			accumulatedTranscript += " " + transcript
		}
	}
}
