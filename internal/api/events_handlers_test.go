package api

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-arndt/werkbank/internal/config"
	"github.com/p-arndt/werkbank/internal/provider"
	"github.com/p-arndt/werkbank/internal/relay"
)

func TestEventsStreamsRelayMessages(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rl := relay.New(logger)
	s := NewServer(&config.Config{}, &MockProjectService{}, provider.NewRegistry("claude"), rl, logger)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/projects/demo-1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Headers and the opening comment frame arrive before any message is
	// published; a quiet project must still yield an open stream.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	opening, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(opening, ":"), "expected comment frame, got %q", opening)

	// Wait until the handler registered its subscription before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for rl.Subscribers("demo-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rl.Publish("demo-1", relay.ProjectStatus("provisioning", "creating sandbox", ""))
	rl.Publish("demo-1", relay.GenerationEvent(map[string]string{"kind": "text", "content": "hi"}))

	var lines []string
	for len(lines) < 4 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line != "" {
			lines = append(lines, line)
		}
	}

	assert.Equal(t, "event: project_status", lines[0])
	assert.Contains(t, lines[1], `"status":"provisioning"`)
	assert.Equal(t, "event: generation_event", lines[2])
	assert.Contains(t, lines[3], `"kind":"text"`)
}

func TestEventsRejectsInvalidProjectID(t *testing.T) {
	s := newTestServer(&MockProjectService{})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/v1/projects/x/events", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
