package orders

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type stubBackend struct {
	order       *types.Order
	getErr      error
	retried     []int
	retryErr    error
	payload     []byte
	downloadErr error
}

func (s *stubBackend) ListOrders(ctx context.Context, page pagination.Params) ([]types.Order, error) {
	return nil, nil
}

func (s *stubBackend) GetOrder(ctx context.Context, orderID int) (*types.Order, error) {
	return s.order, s.getErr
}

func (s *stubBackend) RetryOrder(ctx context.Context, orderID int) (*types.Order, error) {
	if s.retryErr != nil {
		return nil, s.retryErr
	}
	s.retried = append(s.retried, orderID)
	return s.order, nil
}

func (s *stubBackend) DownloadOrderFile(ctx context.Context, orderID int, format string, w io.Writer) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}
	_, err := w.Write(s.payload)
	return err
}

func newTestService(t *testing.T, b *stubBackend) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(b, logg)
	require.NoError(t, err)
	return svc
}

func TestRetryOnlyFailedOrders(t *testing.T) {
	backend := &stubBackend{order: &types.Order{ID: 1, Status: enums.OrderStatusProcessing}}
	svc := newTestService(t, backend)

	_, err := svc.Retry(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, backend.retried)

	backend.order = &types.Order{ID: 1, Status: enums.OrderStatusFailed}
	_, err = svc.Retry(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, backend.retried)
}

func TestDownloadWritesFile(t *testing.T) {
	backend := &stubBackend{payload: []byte("stitch bytes")}
	svc := newTestService(t, backend)
	dir := t.TempDir()

	path, err := svc.Download(context.Background(), 7, "pes", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "order-7.pes"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stitch bytes", string(data))
}

func TestDownloadRejectsUnknownFormat(t *testing.T) {
	svc := newTestService(t, &stubBackend{})

	_, err := svc.Download(context.Background(), 7, "docx", t.TempDir())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDownloadFailureRemovesPartialFile(t *testing.T) {
	backend := &stubBackend{downloadErr: pkgerrors.New(pkgerrors.CodeNotFound, "file not produced yet")}
	svc := newTestService(t, backend)
	dir := t.TempDir()

	_, err := svc.Download(context.Background(), 7, "pes", dir)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "order-7.pes"))
	assert.True(t, os.IsNotExist(statErr))
}
