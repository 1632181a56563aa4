// Package deepgram generates speech through deepgram's speak websocket API.
package deepgram

import (
	"fmt"
	"slices"
)

// Voice is a deepgram aura voice model.
type Voice string

const (
	VoiceAsteria Voice = "aura-asteria-en"
	VoiceLuna    Voice = "aura-luna-en"
	VoiceStella  Voice = "aura-stella-en"
	VoiceAthena  Voice = "aura-athena-en"
	VoiceOrion   Voice = "aura-orion-en"
	VoiceArcas   Voice = "aura-arcas-en"
	VoiceHelios  Voice = "aura-helios-en"
)

var defaultVoice = VoiceAsteria

func AvailableVoices() []Voice {
	return []Voice{
		VoiceAsteria, VoiceLuna, VoiceStella, VoiceAthena,
		VoiceOrion, VoiceArcas, VoiceHelios,
	}
}

type SynthesisClient struct {
	voice Voice
}

func NewSynthesisClient(voice Voice) (*SynthesisClient, error) {
	client := &SynthesisClient{voice: defaultVoice}

	if !slices.Contains(AvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice")
	}

	client.voice = voice

	return client, nil
}

func (c *SynthesisClient) SetVoice(voice Voice) {
	c.voice = voice
}
