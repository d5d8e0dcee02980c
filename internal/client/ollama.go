// Package client talks to the Ollama HTTP API served by the launched
// container.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	requestTimeout = 15 * time.Second
	readyInterval  = time.Second
)

type OllamaClient struct {
	httpClient *retryablehttp.Client
	baseURL    string
}

func New(baseURL string, logger *log.Logger) *OllamaClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = requestTimeout
	if logger != nil {
		rc.Logger = logger
	}

	return &OllamaClient{
		httpClient: rc,
		baseURL:    baseURL,
	}
}

func (c *OllamaClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var raw []byte
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		raw = jsonData
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, raw)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return fmt.Errorf("status: %d, body: %s", resp.StatusCode, buf.String())
}

// Version returns the server version string, which doubles as the readiness
// check.
func (c *OllamaClient) Version(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/version", nil)
	if err != nil {
		return "", fmt.Errorf("failed to query version: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode version response: %w", err)
	}
	return payload.Version, nil
}

// WaitReady polls the version endpoint until the server answers or the
// context expires.
func (c *OllamaClient) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()

	for {
		if _, err := c.Version(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ollama server did not become ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// PullModel downloads a model through the server, consuming the streamed
// status lines. A stream line carrying an error aborts the pull.
func (c *OllamaClient) PullModel(ctx context.Context, name string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/pull", map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("failed to request model pull: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(line, &status); err != nil {
			return fmt.Errorf("failed to decode pull status line: %w", err)
		}
		if status.Error != "" {
			return fmt.Errorf("model pull failed: %s", status.Error)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("model pull stream interrupted: %w", err)
	}
	return nil
}

// Generate runs a single non-streaming completion, useful as a smoke check
// that the served model answers.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	body := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		return "", fmt.Errorf("failed to request generation: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var payload struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	return payload.Response, nil
}
