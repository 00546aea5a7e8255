// Package voice is the boundary to the speech collaborators. The core only
// exchanges plain strings; capture, playback and silence detection live on
// the device side.
package voice

import (
	"context"

	"go.uber.org/zap"
)

// VoiceService is the narrow interface the core consumes for voice I/O.
type VoiceService interface {
	// Speak delivers a spoken response for the identity.
	Speak(ctx context.Context, identity, text string) error
	// Transcribe turns a mono 16kHz LINEAR16 WAV payload into text.
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// LogVoice is the no-hardware implementation: Speak lands in the log and
// Transcribe is unavailable. Used when no speech backend is configured.
type LogVoice struct {
	Logger *zap.Logger
}

func (v *LogVoice) Speak(_ context.Context, identity, text string) error {
	v.Logger.Info("speak", zap.String("identity", identity), zap.String("text", text))
	return nil
}

func (v *LogVoice) Transcribe(context.Context, []byte, string) (string, error) {
	return "", ErrNoSpeechBackend
}
