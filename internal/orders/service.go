package orders

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	ListOrders(ctx context.Context, page pagination.Params) ([]types.Order, error)
	GetOrder(ctx context.Context, orderID int) (*types.Order, error)
	RetryOrder(ctx context.Context, orderID int) (*types.Order, error)
	DownloadOrderFile(ctx context.Context, orderID int, format string, w io.Writer) error
}

// Service reads the user's orders. Orders are server-owned and
// server-transitioned; everything here is observation plus the two explicit
// user actions, retry and download.
type Service struct {
	backend backend
	logger  *logger.Logger
}

// NewService builds the orders service.
func NewService(b backend, logg *logger.Logger) (*Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{backend: b, logger: logg}, nil
}

// List fetches a page of orders, newest first.
func (s *Service) List(ctx context.Context, page pagination.Params) ([]types.Order, error) {
	return s.backend.ListOrders(ctx, page)
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, orderID int) (*types.Order, error) {
	return s.backend.GetOrder(ctx, orderID)
}

// Retry asks the backend to reprocess an order. Only failed orders qualify;
// anything else is rejected before the call.
func (s *Service) Retry(ctx context.Context, orderID int) (*types.Order, error) {
	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order %d is %s, only failed orders can be retried", orderID, order.Status))
	}
	return s.backend.RetryOrder(ctx, orderID)
}

// Download streams a produced file for the order into destDir, named after
// the order and format. Returns the written path.
func (s *Service) Download(ctx context.Context, orderID int, format, destDir string) (string, error) {
	code, err := enums.ParseFormatCode(format)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown file format")
	}

	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating download directory")
	}

	path := filepath.Join(destDir, fmt.Sprintf("order-%d.%s", orderID, strings.ToLower(code.String())))
	f, err := os.Create(path)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating download file")
	}

	if err := s.backend.DownloadOrderFile(ctx, orderID, code.String(), f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing download file")
	}

	s.logger.Info(s.logger.WithField(ctx, "path", path), "order file downloaded")
	return path, nil
}
