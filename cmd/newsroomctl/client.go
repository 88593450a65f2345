package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsroom/pipeline"
	"newsroom/types"
)

// ControlClient is a thin HTTP client over the control package's
// internal surface, mirroring the demo client's shape but pointed at
// the pipeline's own endpoints instead of an orchestrator webhook.
type ControlClient struct {
	baseURL string
	client  *http.Client
}

func NewControlClient(baseURL string) *ControlClient {
	return &ControlClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *ControlClient) Status() (*pipeline.Status, error) {
	var status pipeline.Status
	if err := c.getJSON("/internal/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *ControlClient) Limits() (*pipeline.LimitsSnapshot, error) {
	var limits pipeline.LimitsSnapshot
	if err := c.getJSON("/internal/limits", &limits); err != nil {
		return nil, err
	}
	return &limits, nil
}

func (c *ControlClient) TriggerBatch() (*types.ProcessingResult, error) {
	resp, err := c.client.Post(c.baseURL+"/internal/batches/trigger", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("trigger batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var result types.ProcessingResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode trigger response: %w", err)
	}
	return &result, nil
}

func (c *ControlClient) ResetBreaker(source string) error {
	resp, err := c.client.Post(c.baseURL+"/internal/breakers/"+source+"/reset", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("reset breaker: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

func (c *ControlClient) getJSON(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
