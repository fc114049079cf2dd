package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/ninespace/snapshot-api/internal/domain/port"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type SnapshotGetter interface {
	Execute(ctx context.Context, cameraID string) entity.SnapshotResult
}

type Handler struct {
	snapshots SnapshotGetter
	history   port.CaptureHistory
	logger    *zap.Logger
}

// NewHandler wires the camera routes. history may be nil, in which case the
// history route answers 404.
func NewHandler(snapshots SnapshotGetter, history port.CaptureHistory, logger *zap.Logger) *Handler {
	return &Handler{snapshots: snapshots, history: history, logger: logger}
}

func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h.Mount(app.Group("/api"))
	return app
}

func (h *Handler) Mount(router fiber.Router) {
	router.Get("/camera/:camera_id", h.GetSnapshot)
	router.Get("/camera/:camera_id/history", h.GetHistory)
}

type cameraParams struct {
	CameraID string `json:"camera_id"`
}

// cameraParamsFrom copies and trims the route param: fiber reuses the
// underlying buffer after the handler returns, and camera ids outlive the
// request as cache keys.
func cameraParamsFrom(c *fiber.Ctx) cameraParams {
	return cameraParams{CameraID: strings.TrimSpace(strings.Clone(c.Params("camera_id")))}
}

func (p cameraParams) Validate() error {
	return v.ValidateStruct(&p,
		v.Field(&p.CameraID, v.Required, v.Length(1, 64)),
	)
}

// GetSnapshot answers multipart/mixed (JSON status + JPEG) on success, JSON
// alone on capture failure, and 503 when the capture queue is full.
func (h *Handler) GetSnapshot(c *fiber.Ctx) error {
	params := cameraParamsFrom(c)
	if err := params.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(entity.NewFailureResult(params.CameraID, 0, entity.DetailInvalidCamera))
	}

	result := h.snapshots.Execute(c.UserContext(), params.CameraID)

	switch {
	case result.Busy():
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	case result.InvalidCamera():
		return c.Status(fiber.StatusBadRequest).JSON(result)
	case !result.OK || len(result.Image) == 0:
		return c.Status(fiber.StatusOK).JSON(result)
	}

	body, contentType, err := multipartBody(result)
	if err != nil {
		h.logger.Error("failed to build multipart response", zap.String("camera_id", result.CameraID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *Handler) GetHistory(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "capture history is not enabled",
		})
	}

	params := cameraParamsFrom(c)
	if err := params.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit),
			})
		}
		limit = n
	}

	records, err := h.history.Recent(c.UserContext(), params.CameraID, limit)
	if err != nil {
		h.logger.Error("failed to read capture history", zap.String("camera_id", params.CameraID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "capture history unavailable",
		})
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

func multipartBody(result entity.SnapshotResult) ([]byte, string, error) {
	status, err := json.Marshal(result)
	if err != nil {
		return nil, "", fmt.Errorf("marshal status: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	jsonPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=utf-8"},
	})
	if err != nil {
		return nil, "", err
	}
	if _, err := jsonPart.Write(status); err != nil {
		return nil, "", err
	}

	imgPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":        {"image/jpeg"},
		"Content-Disposition": {`inline; filename="snapshot.jpg"`},
	})
	if err != nil {
		return nil, "", err
	}
	if _, err := imgPart.Write(result.Image); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "multipart/mixed; boundary=" + mw.Boundary(), nil
}
