package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/p-arndt/werkbank/internal/lifecycle"
)

func TestGenerateAccepted(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Generate", mock.Anything, "demo-1", "add a button", "", "").Return(nil)
	s := newTestServer(svc)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/projects/demo-1/generate", generateRequest{
		Instruction: "add a button",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	svc.AssertExpectations(t)
}

func TestGenerateEmptyInstruction(t *testing.T) {
	svc := &MockProjectService{}
	s := newTestServer(svc)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/projects/demo-1/generate", generateRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Generate")
}

func TestGenerateWhileBusy(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Generate", mock.Anything, "demo-1", "again", "", "").Return(lifecycle.ErrBusy)
	s := newTestServer(svc)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/projects/demo-1/generate", generateRequest{
		Instruction: "again",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var apiErr APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, ErrCodeProjectBusy, apiErr.Code)
}

func TestCancelGeneration(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("CancelGeneration", "demo-1").Return(nil)
	s := newTestServer(svc)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/projects/demo-1/generate/cancel", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cancelled":true}`, rec.Body.String())
}

func TestCancelGenerationInvalidState(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("CancelGeneration", "demo-1").Return(lifecycle.ErrInvalidState)
	s := newTestServer(svc)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/v1/projects/demo-1/generate/cancel", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var apiErr APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, ErrCodeInvalidState, apiErr.Code)
}
