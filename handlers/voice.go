package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voicecal/services/dialogue"
	"voicecal/services/voice"
	"voicecal/utils"
)

const (
	MaxAudioFileSize = 5 * 1024 * 1024 // conservative cap for one utterance
	AllowedExtension = ".wav"
	requiredRate     = 16000
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	return &header, nil
}

// VoiceHandler turns uploaded speech into dialogue turns.
type VoiceHandler struct {
	Voice    voice.VoiceService
	Dialogue dialogue.DialogueService
	Logger   *zap.Logger
}

func NewVoiceHandler(voiceSvc voice.VoiceService, dialogueSvc dialogue.DialogueService, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{Voice: voiceSvc, Dialogue: dialogueSvc, Logger: logger}
}

// Transcribe accepts a mono 16kHz LINEAR16 WAV upload and returns the
// transcript. When a sessionID form field is present the transcript is also
// submitted as a dialogue turn, so a voice client needs only this endpoint.
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	language := c.DefaultPostForm("language", "en-US")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != AllowedExtension {
		utils.JSONError(c, http.StatusBadRequest, "invalid file type",
			fmt.Sprintf("expected %s, got %s", AllowedExtension, ext))
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, MaxAudioFileSize))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read audio file", err.Error())
		return
	}

	wav, err := parseWaveHeader(audio)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid audio", err.Error())
		return
	}
	if wav.NumChannels != 1 || wav.SampleRate != requiredRate {
		utils.JSONError(c, http.StatusBadRequest, "unsupported audio format",
			fmt.Sprintf("expected mono %dHz, got %d channel(s) at %dHz", requiredRate, wav.NumChannels, wav.SampleRate))
		return
	}

	transcript, err := h.Voice.Transcribe(c.Request.Context(), audio, language)
	if err != nil {
		if errors.Is(err, voice.ErrNoSpeechBackend) {
			utils.JSONError(c, http.StatusNotImplemented, "speech recognition unavailable", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "speech recognition failed", err.Error())
		return
	}

	sessionID := c.PostForm("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusOK, gin.H{"transcription": transcript})
		return
	}

	result, err := h.Dialogue.SubmitUtterance(c.Request.Context(), sessionID, transcript)
	if err != nil {
		h.Logger.Warn("voice turn failed", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process transcribed turn", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transcription": transcript,
		"turn":          result,
	})
}
