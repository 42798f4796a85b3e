package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Chime plays short tones on simulated host events. Audio is optional: when the
// speaker can't be opened every call is a no-op.
type Chime struct {
	enabled bool
}

func NewChime(logger interface {
	Errorf(string, string, ...interface{})
}) *Chime {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		if logger != nil {
			logger.Errorf("sound", "audio initialization failed: %v", err)
		}
		return &Chime{}
	}
	return &Chime{enabled: true}
}

// Play sounds freq Hz for d.
func (c *Chime) Play(freq float64, d time.Duration) {
	if c == nil || !c.enabled {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}
