package speech

import (
	"context"
	"fmt"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Google recognizes speech with Cloud Speech-to-Text. Credentials come
// from GOOGLE_APPLICATION_CREDENTIALS.
type Google struct {
	language  string
	recognize recognizeFunc
	close     func() error
}

// NewGoogle dials Cloud Speech with application default credentials.
func NewGoogle(ctx context.Context, language string) (*Google, error) {
	c, err := gspeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("google speech client: %w", err)
	}
	return &Google{
		language: language,
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return c.Recognize(ctx, req)
		},
		close: c.Close,
	}, nil
}

func (g *Google) Name() string { return "google" }

func (g *Google) Recognize(ctx context.Context, u Utterance) (string, error) {
	resp, err := g.recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(u.SampleRate),
			LanguageCode:               g.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: int16LE(u.Samples)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("google recognize: %w", err)
	}

	var parts []string
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close closes the gRPC client.
func (g *Google) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}
