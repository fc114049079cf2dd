package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ninespace/snapshot-api/internal/domain/entity"
)

// Client talks to a running snapshot API.
type Client struct {
	http *resty.Client
}

// Snapshot is a decoded /api/camera response. Image is empty unless
// Status.OK is true.
type Snapshot struct {
	Status entity.SnapshotResult
	Image  []byte
}

func NewClient(server string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(server).
			SetTimeout(timeout),
	}
}

func (c *Client) Snapshot(ctx context.Context, cameraID string) (Snapshot, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("camera_id", cameraID).
		Get("/api/camera/{camera_id}")
	if err != nil {
		return Snapshot{}, fmt.Errorf("request snapshot: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusBadRequest, http.StatusServiceUnavailable:
	default:
		return Snapshot{}, fmt.Errorf("unexpected status %s", resp.Status())
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header().Get("Content-Type"))
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse content type: %w", err)
	}

	if mediaType != "multipart/mixed" {
		var snap Snapshot
		if err := json.Unmarshal(resp.Body(), &snap.Status); err != nil {
			return Snapshot{}, fmt.Errorf("decode status: %w", err)
		}
		return snap, nil
	}
	return decodeMultipart(resp.Body(), params["boundary"])
}

func decodeMultipart(body []byte, boundary string) (Snapshot, error) {
	var snap Snapshot
	mr := multipart.NewReader(bytes.NewReader(body), boundary)

	statusPart, err := mr.NextPart()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read status part: %w", err)
	}
	if err := json.NewDecoder(statusPart).Decode(&snap.Status); err != nil {
		return Snapshot{}, fmt.Errorf("decode status: %w", err)
	}

	imagePart, err := mr.NextPart()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read image part: %w", err)
	}
	if snap.Image, err = io.ReadAll(imagePart); err != nil {
		return Snapshot{}, fmt.Errorf("read image: %w", err)
	}
	return snap, nil
}

func (c *Client) History(ctx context.Context, cameraID string, limit int) ([]entity.CaptureRecord, error) {
	var records []entity.CaptureRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("camera_id", cameraID).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&records).
		Get("/api/camera/{camera_id}/history")
	if err != nil {
		return nil, fmt.Errorf("request history: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("history: %s: %s", resp.Status(), bytes.TrimSpace(resp.Body()))
	}
	return records, nil
}
