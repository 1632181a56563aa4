// Package miniaudio drives the local microphone and speakers through malgo.
// One Client owns both devices: it hands out recordings of the microphone and
// accepts synthesized audio for playback.
package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	session "github.com/voyagent/voyagent-core/core"
	"github.com/voyagent/voyagent-core/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playbackClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

// RequestMicrophone starts the capture device and returns the recording that
// accumulates audio until stopped.
func (c *Client) RequestMicrophone(_ context.Context) (session.CaptureStream, error) {
	recording := &captureRecording{client: &c.captureClient}
	if err := c.captureClient.Begin(func(chunk []byte) {
		recording.mu.Lock()
		recording.blob = append(recording.blob, chunk...)
		recording.mu.Unlock()
	}); err != nil {
		return nil, err
	}
	return recording, nil
}

type captureRecording struct {
	client *captureClient

	blob []byte
	mu   sync.Mutex
}

// Stop releases the microphone and returns everything recorded so far.
func (r *captureRecording) Stop() ([]byte, error) {
	if err := r.client.End(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blob, nil
}

func (c *Client) SendAudio(audio []byte) error {
	return c.playbackClient.SendAudio(audio)
}

func (c *Client) Clear() {
	c.playbackClient.ClearBuffer()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
