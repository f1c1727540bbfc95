package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/p-arndt/werkbank/protocol"
)

// Command execution in a fresh sandbox can install packages; keep the
// client timeout generous and bound individual commands in the request.
const bridgeHTTPTimeout = 10 * time.Minute

// BridgeClient talks to the remote sandbox provisioning bridge over HTTP.
// Generation events arrive as a server-sent event stream.
type BridgeClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewBridgeClient(baseURL string, logger *slog.Logger) *BridgeClient {
	return &BridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: bridgeHTTPTimeout},
		logger:  logger,
	}
}

func (c *BridgeClient) Initialize(ctx context.Context, projectID string) (string, error) {
	body := map[string]string{"projectId": projectID}
	var resp struct {
		SandboxID string `json:"sandboxId"`
	}
	status, err := c.postJSON(ctx, "/api/sandbox/initialize", body, &resp)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: initialize returned status %d", ErrProvisioning, status)
	}
	if resp.SandboxID == "" {
		return "", fmt.Errorf("%w: initialize returned no sandbox id", ErrProvisioning)
	}
	c.logger.Info("sandbox initialized", "project_id", projectID, "sandbox_id", resp.SandboxID)
	return resp.SandboxID, nil
}

func (c *BridgeClient) ExecuteCommand(ctx context.Context, projectID, command string, opts ExecOpts) (*ExecResult, error) {
	body := map[string]any{
		"projectId": projectID,
		"command":   command,
		"options": map[string]any{
			"background": opts.Background,
			"timeoutMs":  opts.TimeoutMs,
		},
	}
	var resp protocol.ExecuteResponse
	status, err := c.postJSON(ctx, "/api/sandbox/execute-command", body, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: execute-command returned status %d", ErrTransport, status)
	}

	result := &ExecResult{
		Success:    resp.Success,
		ExitCode:   resp.ExitCode,
		Output:     resp.Output,
		DurationMs: resp.DurationMs,
	}
	if !resp.Success && result.Output == "" {
		result.Output = resp.Error
	}
	return result, nil
}

func (c *BridgeClient) GetHost(ctx context.Context, projectID string, port int) (string, error) {
	var resp struct {
		HostURL string `json:"hostUrl"`
	}
	status, err := c.getJSON(ctx, fmt.Sprintf("/api/sandbox/host/%s/%d", projectID, port), &resp)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: project %s", ErrSandboxNotFound, projectID)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: get host returned status %d", ErrTransport, status)
	}
	return resp.HostURL, nil
}

func (c *BridgeClient) GetSession(ctx context.Context, projectID string) (string, error) {
	var resp struct {
		Session string `json:"session"`
	}
	status, err := c.getJSON(ctx, "/api/sandbox/session/"+projectID, &resp)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", nil
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: get session returned status %d", ErrTransport, status)
	}
	return resp.Session, nil
}

func (c *BridgeClient) SetSession(ctx context.Context, projectID, sessionID string) error {
	body := map[string]string{"sessionId": sessionID}
	status, err := c.postJSON(ctx, "/api/sandbox/session/"+projectID, body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: set session returned status %d", ErrTransport, status)
	}
	return nil
}

// Generate opens the streamed generate-code endpoint and forwards each
// pushed event. Malformed SSE lines are skipped; the stream ends when the
// bridge closes the response.
func (c *BridgeClient) Generate(ctx context.Context, req protocol.GenerateRequest, events chan<- protocol.GenerationEvent) error {
	payload, err := json.Marshal(map[string]any{
		"projectId": req.ProjectID,
		"prompt":    req.Prompt,
		"model":     req.Model,
		"streaming": true,
	})
	if err != nil {
		return fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sandbox/generate-code", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	// No client timeout here: generation legitimately runs for minutes and
	// the context carries cancellation.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: generate returned status %d: %s", ErrTransport, resp.StatusCode, string(text))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev protocol.GenerationEvent
		if err := json.Unmarshal([]byte(line[len("data: "):]), &ev); err != nil {
			c.logger.Debug("skipping malformed generation event", "project_id", req.ProjectID, "error", err)
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
		if ev.Terminal() {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: generate stream: %v", ErrTransport, err)
	}
	return nil
}

func (c *BridgeClient) Teardown(ctx context.Context, projectID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/sandbox/"+projectID, nil)
	if err != nil {
		return fmt.Errorf("build teardown request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: teardown returned status %d", ErrTransport, resp.StatusCode)
	}
	c.logger.Info("sandbox torn down", "project_id", projectID)
	return nil
}

func (c *BridgeClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	status, err := c.getJSON(ctx, "/api/health", &resp)
	if err != nil {
		return err
	}
	if status != http.StatusOK || resp.Status != "ok" {
		return fmt.Errorf("%w: bridge health returned status %d", ErrTransport, status)
	}
	return nil
}

func (c *BridgeClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *BridgeClient) postJSON(ctx context.Context, path string, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *BridgeClient) getJSON(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	return c.doJSON(req, out)
}

func (c *BridgeClient) doJSON(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return resp.StatusCode, nil
}
