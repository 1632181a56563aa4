// Package portaudio plays synthesized audio through the default output
// device. It is an alternative to the miniaudio playback path on systems
// where portaudio is the better supported backend.
package portaudio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/voyagent/voyagent-core/core/audio"
)

type Client struct {
	bufferSize    int
	stream        *portaudio.Stream
	leftoverAudio []byte

	out []int16
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, audio.DefaultSampleRate, bufferSize, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start playback stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		out:        out,
	}, nil
}

// SendAudio writes whole buffers to the stream and keeps the remainder for
// the next call.
func (c *Client) SendAudio(audio []byte) error {
	frameBytes := c.bufferSize * 2

	audio = append(c.leftoverAudio, audio...)
	for len(audio) >= frameBytes {
		if err := binary.Read(bytes.NewReader(audio[:frameBytes]), binary.LittleEndian, c.out); err != nil {
			return fmt.Errorf("failed to decode audio buffer: %w", err)
		}
		if err := c.stream.Write(); err != nil {
			return fmt.Errorf("failed to write to playback stream: %w", err)
		}
		audio = audio[frameBytes:]
	}

	c.leftoverAudio = append(c.leftoverAudio[:0], audio...)
	return nil
}

func (c *Client) Clear() {
	c.leftoverAudio = nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) Close() {
	_ = c.stream.Stop()
	c.stream.Close()
	portaudio.Terminate()
}
