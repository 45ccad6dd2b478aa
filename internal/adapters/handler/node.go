package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fitmask/internal/core/domain"
	"fitmask/internal/core/port"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// Node translates the host's JSON invocation payloads to and from domain
// tensors and dispatches to the node registry.
type Node struct {
	registry      port.NodeRegistry
	encoder       port.PreviewEncoder
	publisher     port.EventPublisher
	timeout       time.Duration
	defaultPolicy domain.MissingMaskPolicy
}

func NewNode(registry port.NodeRegistry, encoder port.PreviewEncoder, publisher port.EventPublisher,
	timeout time.Duration, defaultPolicy domain.MissingMaskPolicy) *Node {
	return &Node{registry: registry, encoder: encoder, publisher: publisher,
		timeout: timeout, defaultPolicy: defaultPolicy}
}

type imagePayload struct {
	Height   int       `json:"height"`
	Width    int       `json:"width"`
	Channels int       `json:"channels"`
	Data     []float32 `json:"data"`
}

type maskPayload struct {
	Height int       `json:"height"`
	Width  int       `json:"width"`
	Data   []float32 `json:"data"`
}

type latentPayload struct {
	Channels int       `json:"channels"`
	Height   int       `json:"height"`
	Width    int       `json:"width"`
	Samples  []float32 `json:"samples"`
}

type executeRequest struct {
	Image       *imagePayload  `json:"image"`
	Mask        *maskPayload   `json:"mask,omitempty"`
	Latent      *latentPayload `json:"latent,omitempty"`
	MissingMask string         `json:"missing_mask,omitempty"`
}

type executeResponse struct {
	ExecID       string         `json:"exec_id"`
	FixedMask    *maskPayload   `json:"fixed_mask"`
	PreviewImage string         `json:"preview_image"`
	Info         string         `json:"info"`
	MaskedLatent *latentPayload `json:"masked_latent,omitempty"`
}

// ObjectInfo serves the socket declarations of every registered node for
// host-side discovery.
func (h *Node) ObjectInfo(c *gin.Context) {
	info := make(map[string]domain.NodeSchema)

	for _, nodeType := range h.registry.ListTypes() {
		node, err := h.registry.Get(nodeType)
		if err != nil {
			continue
		}
		info[nodeType] = node.GetSchema()
	}

	c.JSON(http.StatusOK, info)
}

func (h *Node) ListNodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nodes": h.registry.ListTypes()})
}

func (h *Node) Execute(c *gin.Context) {
	nodeType := c.Param("type")

	node, err := h.registry.Get(nodeType)
	if err != nil {
		log.Debug().Str("node", nodeType).Msg("no node for type")
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown node type"})
		return
	}

	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload: " + err.Error()})
		return
	}

	in, err := toDomain(&req, h.defaultPolicy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	execID, err := uuid.NewV4()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create execution id"})
		return
	}

	l := log.With().
		Str("execId", execID.String()).
		Str("node", nodeType).
		Logger()

	l.Info().Msg("handling execution request")

	h.publisher.Publish(c.Request.Context(), domain.ExecutionEvent{
		Type:   domain.ExecutionStarted,
		ExecID: execID.String(),
		Node:   nodeType,
	})

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out, err := node.Execute(ctx, in)
	if err != nil {
		h.publisher.Publish(c.Request.Context(), domain.ExecutionEvent{
			Type:   domain.ExecutionError,
			ExecID: execID.String(),
			Node:   nodeType,
			Error:  err.Error(),
		})

		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrMissingMask) {
			status = http.StatusUnprocessableEntity
		}

		l.Err(err).Msg("execution failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	encoded, err := h.encoder.Encode(out.PreviewImage)
	if err != nil {
		l.Err(err).Msg("failed to encode preview")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode preview"})
		return
	}

	h.publisher.Publish(c.Request.Context(), domain.ExecutionEvent{
		Type:   domain.Executed,
		ExecID: execID.String(),
		Node:   nodeType,
		Info:   out.Info,
	})

	c.JSON(http.StatusOK, &executeResponse{
		ExecID:       execID.String(),
		FixedMask:    fromMask(out.FixedMask),
		PreviewImage: base64.StdEncoding.EncodeToString(encoded),
		Info:         out.Info,
		MaskedLatent: fromLatent(out.MaskedLatent),
	})
}

func toDomain(req *executeRequest, defaultPolicy domain.MissingMaskPolicy) (*domain.NodeInput, error) {
	if req.Image == nil {
		return nil, domain.ErrMissingImage
	}

	if len(req.Image.Data) != req.Image.Height*req.Image.Width*req.Image.Channels {
		return nil, errors.New("image data length does not match extent")
	}

	in := &domain.NodeInput{
		Image: &domain.Image{
			Height:   req.Image.Height,
			Width:    req.Image.Width,
			Channels: req.Image.Channels,
			Pix:      req.Image.Data,
		},
		MissingMask: defaultPolicy,
	}

	if req.Mask != nil {
		if req.Mask.Height > 0 && req.Mask.Width > 0 &&
			len(req.Mask.Data) != req.Mask.Height*req.Mask.Width {
			return nil, errors.New("mask data length does not match extent")
		}

		in.Mask = &domain.Mask{Height: req.Mask.Height, Width: req.Mask.Width, Data: req.Mask.Data}
	}

	if req.Latent != nil {
		if len(req.Latent.Samples) != req.Latent.Channels*req.Latent.Height*req.Latent.Width {
			return nil, errors.New("latent sample length does not match extent")
		}

		in.Latent = &domain.Latent{
			Channels: req.Latent.Channels,
			Height:   req.Latent.Height,
			Width:    req.Latent.Width,
			Samples:  req.Latent.Samples,
		}
	}

	if req.MissingMask != "" {
		policy, err := domain.ParseMissingMaskPolicy(req.MissingMask)
		if err != nil {
			return nil, err
		}
		in.MissingMask = policy
	}

	return in, nil
}

func fromMask(m *domain.Mask) *maskPayload {
	if m == nil {
		return nil
	}

	return &maskPayload{Height: m.Height, Width: m.Width, Data: m.Data}
}

func fromLatent(l *domain.Latent) *latentPayload {
	if l == nil {
		return nil
	}

	return &latentPayload{Channels: l.Channels, Height: l.Height, Width: l.Width, Samples: l.Samples}
}
