package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultGeminiModel is the vision-capable model used for fallback
	// captioning when the primary captioner fails.
	DefaultGeminiModel = "gemini-1.5-flash"

	captionPrompt = "Describe this image in one short sentence suitable as a social media photo caption. " +
		"Mention the main subject, setting and any notable colors or mood. Respond with the sentence only."
)

// GeminiCaptioner is the second-tier captioning provider.
type GeminiCaptioner struct {
	client *genai.Client
	model  string
}

// NewGeminiCaptioner creates a Gemini-backed captioner.
func NewGeminiCaptioner(ctx context.Context, apiKey, model string) (*GeminiCaptioner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiCaptioner{client: client, model: model}, nil
}

// Caption describes the image using a low-temperature vision prompt.
func (g *GeminiCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	format, err := imageFormat(image)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(captionPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini caption: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini caption: no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	caption := strings.TrimSpace(sb.String())
	if caption == "" {
		return "", fmt.Errorf("gemini caption: empty response")
	}
	return caption, nil
}

// Close releases the underlying API client.
func (g *GeminiCaptioner) Close() error {
	return g.client.Close()
}

// imageFormat sniffs the content type and returns the bare format name
// Gemini expects ("jpeg", "png", "webp", "gif").
func imageFormat(image []byte) (string, error) {
	contentType := http.DetectContentType(image)
	format, ok := strings.CutPrefix(contentType, "image/")
	if !ok {
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, contentType)
	}
	return format, nil
}
