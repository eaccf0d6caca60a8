package transcription

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv2"
	"cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// GoogleConfig configures the Cloud Speech-to-Text v2 recognizer.
type GoogleConfig struct {
	ProjectID string
	// Location defaults to "global".
	Location string
	// Language defaults to "en-US".
	Language string
	// Model defaults to "short".
	Model string
	// CredentialsFile is optional; Application Default Credentials are used
	// when empty.
	CredentialsFile string
}

type speechClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleRecognizer calls Recognize on the implicit "_" recognizer of the
// configured project and location.
type GoogleRecognizer struct {
	client     speechClient
	recognizer string
	config     *speechpb.RecognitionConfig
}

func (c *GoogleConfig) applyDefaults() {
	if c.Location == "" {
		c.Location = "global"
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.Model == "" {
		c.Model = "short"
	}
}

// NewGoogleRecognizer dials the Speech API.
func NewGoogleRecognizer(ctx context.Context, cfg GoogleConfig) (*GoogleRecognizer, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("speech: project id is required")
	}
	cfg.applyDefaults()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Location != "global" {
		opts = append(opts, option.WithEndpoint(cfg.Location+"-speech.googleapis.com:443"))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech: creating client: %w", err)
	}
	return newGoogleRecognizer(client, cfg), nil
}

func newGoogleRecognizer(client speechClient, cfg GoogleConfig) *GoogleRecognizer {
	cfg.applyDefaults()
	return &GoogleRecognizer{
		client:     client,
		recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", cfg.ProjectID, cfg.Location),
		config: &speechpb.RecognitionConfig{
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			LanguageCodes: []string{cfg.Language},
			Model:         cfg.Model,
		},
	}
}

// Recognize implements Recognizer.
func (g *GoogleRecognizer) Recognize(ctx context.Context, audio []byte) ([]Result, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Recognizer:  g.recognizer,
		Config:      g.config,
		AudioSource: &speechpb.RecognizeRequest_Content{Content: audio},
	})
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return nil, fmt.Errorf("speech: recognize: %s: %s", st.Code(), st.Message())
		}
		return nil, fmt.Errorf("speech: recognize: %w", err)
	}

	results := make([]Result, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		alts := make([]Alternative, 0, len(r.GetAlternatives()))
		for _, a := range r.GetAlternatives() {
			alts = append(alts, Alternative{
				Transcript: a.GetTranscript(),
				Confidence: a.GetConfidence(),
			})
		}
		results = append(results, Result{Alternatives: alts})
	}
	return results, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleRecognizer) Close() error {
	return g.client.Close()
}
