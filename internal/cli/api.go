package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/framefit/framefit/pkg/errors"
)

// apiClient talks to a running framefit server. The feedback, retrain, and
// variants commands go through the API because the live selector state and
// the session store belong to the server process.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(addr string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// getJSON performs a GET and decodes the response into out.
func (a *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

// postJSON performs a POST with a JSON body and decodes the response into out.
// A nil body sends an empty request.
func (a *apiClient) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.do(req, out)
}

func (a *apiClient) do(req *http.Request, out any) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Code    apperrors.Code `json:"code"`
			Message string         `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			if envelope.Code != "" {
				return apperrors.New(envelope.Code, "%s", envelope.Message)
			}
			return fmt.Errorf("%s", envelope.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
