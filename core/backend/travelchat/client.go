// Package travelchat streams assistant responses from the travel-chat
// backend. Responses arrive as newline-delimited JSON fragments: text deltas,
// tool invocation updates, and a terminating done marker.
package travelchat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jinzhu/copier"
	"github.com/voyagent/voyagent-core/core/backend"
	"github.com/voyagent/voyagent-core/core/messages"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const streamPath = "/v1/chat/stream"

// Scanner buffer cap; tool payloads can get large.
const maxFragmentSize = 1 << 20

type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client for the backend named by VOYAGENT_BACKEND_URL.
func NewClient() (*Client, error) {
	baseURL, ok := os.LookupEnv("VOYAGENT_BACKEND_URL")
	if !ok {
		return nil, fmt.Errorf("backend url not found")
	}

	return &Client{
		url: baseURL + streamPath,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}, nil
}

// Stream sends the transcript and prompt and decodes the fragment stream. It
// returns once the request is prepared; fragments and termination arrive
// through the callbacks.
func (c *Client) Stream(ctx context.Context, transcript []messages.Message, prompt string, opts ...backend.StreamOption) error {
	options := backend.StreamOptions{
		FragmentCallback: func(backend.Fragment) {},
		EndCallback:      func() {},
		ErrorCallback:    func(error) {},
	}
	for _, opt := range opts {
		opt(&options)
	}

	requestBodyBytes, err := json.Marshal(streamRequest{
		Messages: toWireMessages(transcript),
		Prompt:   prompt,
	})
	if err != nil {
		return fmt.Errorf("error marshalling request: %w", err)
	}

	go c.readFragments(ctx, requestBodyBytes, options)

	return nil
}

func (c *Client) readFragments(ctx context.Context, requestBody []byte, options backend.StreamOptions) {
	ctx, span := tracer.Start(ctx, "stream travel response")
	defer span.End()
	span.SetAttributes(attribute.String("request.url", c.url))

	requestStarted := time.Now()
	markFirstFragment := func(span trace.Span) {
		if requestStarted.IsZero() {
			return
		}
		span.SetAttributes(attribute.Float64("response.request_to_first_fragment_time", time.Since(requestStarted).Seconds()))
		span.AddEvent("received first fragment")
		requestStarted = time.Time{}
	}

	fail := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "response stream failed")
		options.ErrorCallback(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBody))
	if err != nil {
		fail(fmt.Errorf("error creating HTTP request: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fail(fmt.Errorf("error sending request: %w", err))
		return
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		fail(fmt.Errorf("non-OK HTTP status: %s", resp.Status))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFragmentSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		markFirstFragment(span)

		var wire wireFragment
		if err := json.Unmarshal(line, &wire); err != nil {
			logger.WarnContext(ctx, "Skipping undecodable fragment", "error", err)
			continue
		}

		switch wire.Type {
		case fragmentTypeDone:
			options.EndCallback()
			return
		case fragmentTypeError:
			fail(fmt.Errorf("backend reported failure: %s", wire.Message))
			return
		}

		fragment, err := decodeFragment(wire)
		if err != nil {
			logger.WarnContext(ctx, "Skipping invalid fragment", "error", err)
			continue
		}
		options.FragmentCallback(fragment)
	}

	if err := scanner.Err(); err != nil {
		fail(fmt.Errorf("error reading streamed response: %w", err))
		return
	}

	// The server hung up without sending the done marker.
	fail(fmt.Errorf("stream ended without completion"))
}

const (
	fragmentTypeText  = "text"
	fragmentTypeTool  = "tool"
	fragmentTypeDone  = "done"
	fragmentTypeError = "error"
)

type wireFragment struct {
	Type    string          `json:"type"`
	Delta   string          `json:"delta,omitempty"`
	Tool    string          `json:"tool,omitempty"`
	State   string          `json:"state,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func decodeFragment(wire wireFragment) (backend.Fragment, error) {
	switch wire.Type {
	case fragmentTypeText:
		return backend.TextFragment{Delta: wire.Delta}, nil
	case fragmentTypeTool:
		if _, err := messages.ParseToolName(wire.Tool); err != nil {
			return nil, err
		}
		if err := validateToolState(messages.ToolState(wire.State)); err != nil {
			return nil, err
		}

		var fragment backend.ToolFragment
		if err := copier.Copy(&fragment, wire); err != nil {
			return nil, fmt.Errorf("failed to map tool fragment: %w", err)
		}
		return fragment, nil
	}
	return nil, fmt.Errorf("unknown fragment type: %q", wire.Type)
}

func validateToolState(state messages.ToolState) error {
	switch state {
	case messages.ToolStateInputStreaming, messages.ToolStateInputAvailable,
		messages.ToolStateOutputAvailable, messages.ToolStateFailed:
		return nil
	}
	return fmt.Errorf("unknown tool state: %q", state)
}

type streamRequest struct {
	Messages []wireMessage `json:"messages"`
	Prompt   string        `json:"prompt"`
}

type wireMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Artifacts []wireToolResult `json:"artifacts,omitempty"`
}

type wireToolResult struct {
	Tool    string          `json:"tool"`
	Payload json.RawMessage `json:"payload"`
}

// toWireMessages flattens the transcript for the backend: text content plus
// the resolved tool artifacts, so follow-up prompts keep their context.
func toWireMessages(transcript []messages.Message) []wireMessage {
	wireMessages := make([]wireMessage, 0, len(transcript))
	for _, message := range transcript {
		wireMsg := wireMessage{
			Role:    string(message.Role),
			Content: message.Text(),
		}
		for _, toolPart := range message.ToolParts() {
			if toolPart.State != messages.ToolStateOutputAvailable {
				continue
			}
			wireMsg.Artifacts = append(wireMsg.Artifacts, wireToolResult{
				Tool:    string(toolPart.Tool),
				Payload: toolPart.Payload,
			})
		}
		wireMessages = append(wireMessages, wireMsg)
	}
	return wireMessages
}
