package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	genai "google.golang.org/genai"

	"github.com/framefit/framefit/pkg/httputil"
)

// DefaultModel is the Gemini model used for placement proposals.
const DefaultModel = "gemini-2.0-flash"

// GeminiModel is a thin wrapper around the official genai client. It only
// focuses on the API call itself; timeouts and the fallback decision live in
// the resize orchestrator.
type GeminiModel struct {
	cli   *genai.Client
	model string
}

// NewGeminiModel creates a Gemini-backed model. The API key is read from the
// environment by the genai client (GEMINI_API_KEY). An empty model name uses
// DefaultModel.
func NewGeminiModel(ctx context.Context, model string) (*GeminiModel, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiModel{cli: cli, model: model}, nil
}

// ProposePlacements sends the instruction template, the element list, and
// the optional canvas snapshot to Gemini and parses the JSON response into
// a complete placement set. Transient transport errors are retried with
// backoff inside the call budget.
func (g *GeminiModel) ProposePlacements(ctx context.Context, req Request) (*Proposal, error) {
	input, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	parts := []*genai.Part{{Text: req.Instructions + "\n\n[INPUT JSON]\n" + string(input)}}
	if len(req.Image) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: req.Image},
		})
	}

	var raw string
	call := func() error {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: parts}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return ErrEmptyResponse
		}
		raw = resp.Candidates[0].Content.Parts[0].Text
		return nil
	}
	if err := httputil.Retry(ctx, 2, 500*time.Millisecond, call); err != nil {
		return nil, err
	}

	return ParseProposal(json.RawMessage(raw), req.Elements)
}

// Ensure GeminiModel implements Model.
var _ Model = (*GeminiModel)(nil)
