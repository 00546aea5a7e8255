package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

// ErrNoSpeechBackend means transcription was requested without an STT backend.
var ErrNoSpeechBackend = errors.New("no speech backend configured")

// GoogleVoice transcribes through Google Cloud Speech-to-Text. Speak logs:
// synthesis happens on the device, the server only decides what to say.
type GoogleVoice struct {
	credentialsFile string
	logger          *zap.Logger
}

func NewGoogleVoice(credentialsFile string, logger *zap.Logger) *GoogleVoice {
	return &GoogleVoice{credentialsFile: credentialsFile, logger: logger}
}

func (v *GoogleVoice) Speak(_ context.Context, identity, text string) error {
	v.logger.Info("speak", zap.String("identity", identity), zap.String("text", text))
	return nil
}

func (v *GoogleVoice) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if language == "" {
		language = "en-US"
	}
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(v.credentialsFile))
	if err != nil {
		return "", fmt.Errorf("failed to initialize speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   16000,
			LanguageCode:      language,
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			transcript.WriteString(alt.Transcript + " ")
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}
