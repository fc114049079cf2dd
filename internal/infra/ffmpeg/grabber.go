package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/ninespace/snapshot-api/internal/infra/rtsp"
	"go.uber.org/zap"
)

// DefaultVideoFilter letterboxes the frame into 1920x1080 without stretching.
const DefaultVideoFilter = "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2"

const (
	maxDetailLen = 200
	// waitDelay bounds how long Wait keeps draining pipes after the process is killed.
	waitDelay = 250 * time.Millisecond
)

type GrabberConfig struct {
	Binary        string
	JPEGQuality   int
	VideoFilter   string
	RTSPTransport string
	// TimeoutFlag names the RTSP socket timeout option: "timeout" on
	// ffmpeg >= 5.0, "stimeout" on 4.x where "timeout" means listen mode.
	TimeoutFlag string
}

// Grabber pulls one frame from an RTSP stream by running ffmpeg once per call.
type Grabber struct {
	binary    string
	quality   int
	filter    string
	transport string
	timeout   string
	logger    *zap.Logger
}

func NewGrabber(cfg GrabberConfig, logger *zap.Logger) *Grabber {
	g := &Grabber{
		binary:    cfg.Binary,
		quality:   cfg.JPEGQuality,
		filter:    cfg.VideoFilter,
		transport: cfg.RTSPTransport,
		timeout:   cfg.TimeoutFlag,
		logger:    logger,
	}
	if g.binary == "" {
		g.binary = "ffmpeg"
	}
	if g.filter == "" {
		g.filter = DefaultVideoFilter
	}
	if g.transport == "" {
		g.transport = "tcp"
	}
	if g.timeout == "" {
		g.timeout = "timeout"
	}
	return g
}

func (g *Grabber) args(target string, timeout time.Duration) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-rtsp_transport", g.transport,
		"-" + g.timeout, strconv.FormatInt(timeout.Microseconds(), 10),
		"-i", target,
		"-an",
		"-frames:v", "1",
		"-vf", g.filter,
		"-q:v", strconv.Itoa(g.quality),
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	}
}

// Capture runs ffmpeg against target and returns the encoded JPEG. The process
// is killed once timeout elapses and is always reaped before Capture returns.
func (g *Grabber) Capture(ctx context.Context, target string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := g.logger.With(zap.String("target", rtsp.Redact(target, target)))

	cmd := exec.CommandContext(runCtx, g.binary, g.args(target, timeout)...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, entity.NewCaptureError(entity.CaptureTimeout, "timeout")
		}
		log.Warn("ffmpeg spawn failed", zap.Error(err))
		return nil, entity.NewCaptureError(entity.CaptureProcessSpawnFailed,
			"spawn failed: %s", truncate(rtsp.Redact(err.Error(), target)))
	}

	err := cmd.Wait()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Debug("ffmpeg killed at deadline", zap.Duration("timeout", timeout))
			return nil, entity.NewCaptureError(entity.CaptureTimeout, "timeout")
		}
		return nil, entity.NewCaptureError(entity.CaptureProcessError, "%s", g.failureDetail(err, stderr.String(), target))
	}

	img := stdout.Bytes()
	if !isJPEG(img) {
		log.Debug("ffmpeg exited without a frame", zap.Int("stdout_bytes", len(img)))
		return nil, entity.NewCaptureError(entity.CaptureNoFrameDecoded, "no frame decoded")
	}

	log.Debug("frame captured", zap.Int("bytes", len(img)))
	return img, nil
}

func (g *Grabber) failureDetail(err error, stderr, target string) string {
	if line := lastLine(stderr); line != "" {
		return truncate(rtsp.Redact(line, target))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "ffmpeg exit code " + strconv.Itoa(exitErr.ExitCode())
	}
	return truncate(rtsp.Redact(err.Error(), target))
}

func isJPEG(b []byte) bool {
	return len(b) > 2 && b[0] == 0xFF && b[1] == 0xD8
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	return strings.ToValidUTF8(s[:maxDetailLen], "")
}
