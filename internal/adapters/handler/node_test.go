package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fitmask/internal/core/domain"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockNode struct {
	err      error
	response *domain.NodeOutput
	input    *domain.NodeInput
}

func (m *MockNode) Execute(_ context.Context, in *domain.NodeInput) (*domain.NodeOutput, error) {
	m.input = in
	return m.response, m.err
}

func (m *MockNode) GetType() string {
	return "MockNode"
}

func (m *MockNode) GetSchema() domain.NodeSchema {
	return domain.NodeSchema{Type: "MockNode", DisplayName: "Mock Node"}
}

type MockEncoder struct {
	err      error
	response []byte
}

func (m *MockEncoder) Encode(_ *domain.Image) ([]byte, error) {
	return m.response, m.err
}

type MockPublisher struct {
	events []domain.ExecutionEvent
}

func (m *MockPublisher) Publish(_ context.Context, event domain.ExecutionEvent) {
	m.events = append(m.events, event)
}

func setupRouter(node *MockNode, encoder *MockEncoder, publisher *MockPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	registry := &domain.NodeRegistry{}
	registry.Register(node)

	h := NewNode(registry, encoder, publisher, time.Minute, domain.DefaultMissingMaskPolicy)

	r := gin.New()
	r.GET("/object_info", h.ObjectInfo)
	r.GET("/nodes", h.ListNodes)
	r.POST("/nodes/:type/execute", h.Execute)

	return r
}

func validRequest() *executeRequest {
	return &executeRequest{
		Image: &imagePayload{
			Height:   2,
			Width:    2,
			Channels: 3,
			Data:     make([]float32, 12),
		},
	}
}

func postExecute(r *gin.Engine, nodeType string, req *executeRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(req)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nodes/"+nodeType+"/execute", bytes.NewReader(body)))

	return w
}

func TestObjectInfo(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/object_info", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]domain.NodeSchema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))

	require.Contains(t, info, "MockNode")
	assert.Equal(t, "Mock Node", info["MockNode"].DisplayName)
}

func TestListNodes(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nodes", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nodes":["MockNode"]}`, w.Body.String())
}

func TestExecuteUnknownNodeType(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	w := postExecute(r, "NoSuchNode", validRequest())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteMalformedPayload(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nodes/MockNode/execute", bytes.NewReader([]byte("{"))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteMissingImage(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	w := postExecute(r, "MockNode", &executeRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image input required")
}

func TestExecuteImageLengthMismatch(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	req := validRequest()
	req.Image.Data = make([]float32, 5)

	w := postExecute(r, "MockNode", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image data length")
}

func TestExecuteUnknownPolicy(t *testing.T) {
	r := setupRouter(&MockNode{}, &MockEncoder{}, &MockPublisher{})

	req := validRequest()
	req.MissingMask = "all_grey"

	w := postExecute(r, "MockNode", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown missing_mask policy")
}

func TestExecuteMissingMaskError(t *testing.T) {
	mn := &MockNode{err: fmt.Errorf("%w: mask socket is empty", domain.ErrMissingMask)}
	mp := &MockPublisher{}

	r := setupRouter(mn, &MockEncoder{}, mp)

	w := postExecute(r, "MockNode", validRequest())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.Len(t, mp.events, 2)
	assert.Equal(t, domain.ExecutionStarted, mp.events[0].Type)
	assert.Equal(t, domain.ExecutionError, mp.events[1].Type)
	assert.Contains(t, mp.events[1].Error, "mask input required")
}

func TestExecuteNodeFailure(t *testing.T) {
	mn := &MockNode{err: errors.New("mock error")}

	r := setupRouter(mn, &MockEncoder{}, &MockPublisher{})

	w := postExecute(r, "MockNode", validRequest())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExecuteEncoderFailure(t *testing.T) {
	mn := &MockNode{response: &domain.NodeOutput{
		FixedMask:    domain.NewMask(2, 2, 1),
		PreviewImage: domain.NewImage(2, 2, 4),
	}}

	r := setupRouter(mn, &MockEncoder{err: errors.New("mock error")}, &MockPublisher{})

	w := postExecute(r, "MockNode", validRequest())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExecuteSuccessful(t *testing.T) {
	mn := &MockNode{response: &domain.NodeOutput{
		FixedMask:    domain.NewMask(2, 2, 1),
		PreviewImage: domain.NewImage(2, 2, 4),
		Info:         "== Fit Mask to Image ==",
	}}
	mp := &MockPublisher{}

	r := setupRouter(mn, &MockEncoder{response: []byte("png bytes")}, mp)

	req := validRequest()
	req.Mask = &maskPayload{Height: 2, Width: 2, Data: make([]float32, 4)}
	req.Latent = &latentPayload{Channels: 1, Height: 1, Width: 1, Samples: []float32{0.5}}
	req.MissingMask = "all_hidden"

	w := postExecute(r, "MockNode", req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp executeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ExecID)
	assert.Equal(t, 2, resp.FixedMask.Height)
	assert.Equal(t, 2, resp.FixedMask.Width)
	assert.Equal(t, "cG5nIGJ5dGVz", resp.PreviewImage)
	assert.Equal(t, "== Fit Mask to Image ==", resp.Info)
	assert.Nil(t, resp.MaskedLatent)

	// node saw the translated tensors and the parsed policy
	require.NotNil(t, mn.input)
	assert.Equal(t, domain.PolicyAllHidden, mn.input.MissingMask)
	assert.Equal(t, 2, mn.input.Image.Height)
	assert.NotNil(t, mn.input.Mask)
	assert.NotNil(t, mn.input.Latent)

	require.Len(t, mp.events, 2)
	assert.Equal(t, domain.ExecutionStarted, mp.events[0].Type)
	assert.Equal(t, domain.Executed, mp.events[1].Type)
	assert.Equal(t, "== Fit Mask to Image ==", mp.events[1].Info)
}

func TestExecuteDefaultPolicyApplied(t *testing.T) {
	mn := &MockNode{response: &domain.NodeOutput{
		FixedMask:    domain.NewMask(2, 2, 1),
		PreviewImage: domain.NewImage(2, 2, 4),
	}}

	r := setupRouter(mn, &MockEncoder{}, &MockPublisher{})

	w := postExecute(r, "MockNode", validRequest())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.DefaultMissingMaskPolicy, mn.input.MissingMask)
}
