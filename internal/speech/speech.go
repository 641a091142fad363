// Package speech provides text-to-speech and speech-to-text over the Google
// Cloud REST APIs. Both directions are optional: a missing API key disables
// the voice path without affecting text replies.
package speech

import "context"

// Synthesizer converts a reply into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
