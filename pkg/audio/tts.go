package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io/v1"
	DefaultModelID = "eleven_multilingual_v2"
)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// TTSService synthesises spoken cues through the ElevenLabs text-to-speech API.
type TTSService struct {
	apiKey  string
	baseURL string
	modelID string
	client  *http.Client
	json    jsoniter.API
}

type TTSOption func(*TTSService)

func WithBaseURL(url string) TTSOption {
	return func(t *TTSService) {
		t.baseURL = strings.TrimRight(url, "/")
	}
}

func WithModel(modelID string) TTSOption {
	return func(t *TTSService) {
		t.modelID = modelID
	}
}

func WithHTTPClient(client *http.Client) TTSOption {
	return func(t *TTSService) {
		t.client = client
	}
}

func NewTTSService(apiKey string, opts ...TTSOption) *TTSService {
	tts := &TTSService{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		modelID: DefaultModelID,
		client:  &http.Client{Timeout: 30 * time.Second},
		json:    jsoniter.ConfigCompatibleWithStandardLibrary,
	}
	for _, opt := range opts {
		opt(tts)
	}
	return tts
}

// GenerateAudio returns the mp3 rendering of text spoken by the given provider voice.
func (tts *TTSService) GenerateAudio(ctx context.Context, voiceID, text string) ([]byte, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("no provider voice for %q", text)
	}

	body, err := tts.json.Marshal(ttsRequest{
		Text:    text,
		ModelID: tts.modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.6,
			SimilarityBoost: 0.8,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tts.baseURL+"/text-to-speech/"+voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", tts.apiKey)

	resp, err := tts.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ElevenLabs API error: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return io.ReadAll(resp.Body)
}
