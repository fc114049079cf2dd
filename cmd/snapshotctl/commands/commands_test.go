package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/ninespace/snapshot-api/internal/domain/port/mocks"
	"github.com/ninespace/snapshot-api/internal/infra/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fixedSnapshots map[string]entity.SnapshotResult

func (f fixedSnapshots) Execute(_ context.Context, cameraID string) entity.SnapshotResult {
	if r, ok := f[cameraID]; ok {
		return r
	}
	return entity.NewFailureResult(cameraID, 5, "connection refused")
}

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0xff, 0xd9}

func newServer(t *testing.T, history *mocks.MockCaptureHistory) string {
	t.Helper()
	snaps := fixedSnapshots{
		"1": entity.NewSuccessResult("1", 321, jpeg),
		"9": entity.NewBusyResult("9"),
	}

	h := httpapi.NewHandler(snaps, nil, zap.NewNop())
	if history != nil {
		h = httpapi.NewHandler(snaps, history, zap.NewNop())
	}

	srv := httptest.NewServer(adaptor.FiberApp(httpapi.NewApp(h)))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := New()
	cli.SetOutput(&out)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestClient_SnapshotSuccess(t *testing.T) {
	c := NewClient(newServer(t, nil), 5*time.Second)

	snap, err := c.Snapshot(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, snap.Status.OK)
	assert.Equal(t, int64(321), snap.Status.LatencyMs)
	assert.Equal(t, entity.DetailDecoded, snap.Status.Detail)
	assert.Equal(t, jpeg, snap.Image)
}

func TestClient_SnapshotFailureAndBusy(t *testing.T) {
	c := NewClient(newServer(t, nil), 5*time.Second)

	snap, err := c.Snapshot(context.Background(), "2")
	require.NoError(t, err)
	assert.False(t, snap.Status.OK)
	assert.Equal(t, "connection refused", snap.Status.Detail)
	assert.Empty(t, snap.Image)

	snap, err = c.Snapshot(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, snap.Status.Busy())
}

func TestGetCommand_WritesImage(t *testing.T) {
	server := newServer(t, nil)
	out := filepath.Join(t.TempDir(), "cam1.jpg")

	stdout, err := runCLI(t, "--server", server, "get", "1", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"ok":true`)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, jpeg, written)
}

func TestGetCommand_FailureReturnsError(t *testing.T) {
	server := newServer(t, nil)
	out := filepath.Join(t.TempDir(), "cam2.jpg")

	stdout, err := runCLI(t, "--server", server, "get", "2", "--out", out)
	assert.ErrorIs(t, err, ErrSnapshotFailed)
	assert.Contains(t, stdout, `"detail":"connection refused"`)
	assert.NoFileExists(t, out)
}

func TestHistoryCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mocks.NewMockCaptureHistory(ctrl)
	history.EXPECT().Recent(gomock.Any(), "1", 3).Return([]entity.CaptureRecord{
		{CameraID: "1", OK: false, LatencyMs: 2500, Detail: "timeout", CapturedAt: time.Now()},
	}, nil)

	stdout, err := runCLI(t, "--server", newServer(t, history), "history", "1", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CAPTURED AT")
	assert.Contains(t, stdout, "2500ms")
	assert.Contains(t, stdout, "timeout")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	_, err := runCLI(t, "--server", newServer(t, nil), "history", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
