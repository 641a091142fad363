package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
)

// GoogleSpeech talks to the Google Cloud text-to-speech and speech-to-text
// REST endpoints with an API key.
type GoogleSpeech struct {
	tts    *resty.Client
	stt    *resty.Client
	apiKey string
	log    *logrus.Entry
}

// NewGoogleSpeech creates a speech client. It returns nil when no API key is
// configured; callers treat a nil client as voice disabled.
func NewGoogleSpeech(cfg *config.Config) *GoogleSpeech {
	if cfg.GoogleAPIKey == "" {
		return nil
	}

	tts := resty.New()
	tts.SetBaseURL("https://texttospeech.googleapis.com/v1")
	tts.SetTimeout(30 * time.Second)

	stt := resty.New()
	stt.SetBaseURL("https://speech.googleapis.com/v1")
	stt.SetTimeout(60 * time.Second)

	return &GoogleSpeech{
		tts:    tts,
		stt:    stt,
		apiKey: cfg.GoogleAPIKey,
		log:    logrus.WithField("source", "google_speech"),
	}
}

// SetBaseURLs overrides both API endpoints, used in tests.
func (gs *GoogleSpeech) SetBaseURLs(ttsURL, sttURL string) {
	gs.tts.SetBaseURL(ttsURL)
	gs.stt.SetBaseURL(sttURL)
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize converts text into MP3 audio with a neural voice.
func (gs *GoogleSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	body := map[string]any{
		"input": map[string]string{"text": text},
		"voice": map[string]string{
			"languageCode": "en-US",
			"name":         "en-US-Neural2-F",
			"ssmlGender":   "FEMALE",
		},
		"audioConfig": map[string]any{
			"audioEncoding": "MP3",
			"speakingRate":  1.0,
			"pitch":         0.0,
		},
	}

	resp, err := gs.tts.R().
		SetContext(ctx).
		SetQueryParam("key", gs.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/text:synthesize")

	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed synthesizeResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse synthesis response: %w", err)
	}
	if parsed.AudioContent == "" {
		return nil, fmt.Errorf("empty audio in synthesis response")
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}

	gs.log.WithField("bytes", len(audio)).Debug("synthesized speech")
	return audio, nil
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe converts LINEAR16 48kHz audio into text. Multiple recognition
// results are joined into one transcript.
func (gs *GoogleSpeech) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio to transcribe")
	}

	body := map[string]any{
		"config": map[string]any{
			"encoding":                   "LINEAR16",
			"sampleRateHertz":            48000,
			"languageCode":               "en-US",
			"enableAutomaticPunctuation": true,
		},
		"audio": map[string]string{
			"content": base64.StdEncoding.EncodeToString(audio),
		},
	}

	resp, err := gs.stt.R().
		SetContext(ctx).
		SetQueryParam("key", gs.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/speech:recognize")

	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse recognition response: %w", err)
	}

	var parts []string
	for _, result := range parsed.Results {
		if len(result.Alternatives) > 0 && result.Alternatives[0].Transcript != "" {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no transcript in recognition response")
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}
