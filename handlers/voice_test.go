package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voicecal/models"
	"voicecal/services/voice"
)

type stubVoice struct {
	transcript string
	err        error
}

func (s *stubVoice) Speak(context.Context, string, string) error { return nil }

func (s *stubVoice) Transcribe(context.Context, []byte, string) (string, error) {
	return s.transcript, s.err
}

func makeWav(channels uint16, rate uint32) []byte {
	h := waveHeader{
		RiffTag:       [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      36,
		WaveTag:       [4]byte{'W', 'A', 'V', 'E'},
		FmtTag:        [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    rate,
		ByteRate:      rate * uint32(channels) * 2,
		BlockAlign:    channels * 2,
		BitsPerSample: 16,
		DataTag:       [4]byte{'d', 'a', 't', 'a'},
		DataSize:      0,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, &h)
	return buf.Bytes()
}

func uploadWav(t *testing.T, r *gin.Engine, filename string, audio []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = fw.Write(audio)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	return w
}

func newVoiceRouter(v voice.VoiceService, d *stubDialogue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewVoiceHandler(v, d, zap.NewNop())
	r := gin.New()
	r.POST("/api/voice/transcribe", h.Transcribe)
	return r
}

func TestTranscribeValidWav(t *testing.T) {
	r := newVoiceRouter(&stubVoice{transcript: "book a meeting"}, &stubDialogue{})

	w := uploadWav(t, r, "utterance.wav", makeWav(1, 16000), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transcription":"book a meeting"`)
}

func TestTranscribeForwardsToDialogueSession(t *testing.T) {
	d := &stubDialogue{turnResult: &models.TurnResult{
		SessionID: "s1", State: models.StateCapturing, Prompt: "I'm listening. What would you like to schedule?",
	}}
	r := newVoiceRouter(&stubVoice{transcript: "EL25"}, d)

	w := uploadWav(t, r, "utterance.wav", makeWav(1, 16000), map[string]string{"sessionID": "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transcription":"EL25"`)
	assert.Contains(t, w.Body.String(), `"state":"CAPTURING"`)
}

func TestTranscribeRejectsNonWav(t *testing.T) {
	r := newVoiceRouter(&stubVoice{}, &stubDialogue{})
	w := uploadWav(t, r, "utterance.mp3", makeWav(1, 16000), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribeRejectsWrongFormat(t *testing.T) {
	r := newVoiceRouter(&stubVoice{}, &stubDialogue{})

	w := uploadWav(t, r, "stereo.wav", makeWav(2, 16000), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadWav(t, r, "slow.wav", makeWav(1, 8000), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadWav(t, r, "garbage.wav", []byte("not audio"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribeWithoutBackend(t *testing.T) {
	r := newVoiceRouter(&stubVoice{err: voice.ErrNoSpeechBackend}, &stubDialogue{})
	w := uploadWav(t, r, "utterance.wav", makeWav(1, 16000), nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
