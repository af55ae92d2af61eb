package client

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/decode"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

// UploadFile posts filePath as a multipart form part and decodes the
// quasi-JSON reply. An empty fieldName uses the configured upload field.
// A missing file fails before any request is made.
func (c *Client) UploadFile(ctx context.Context, endpoint, filePath, fieldName string) (any, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errs.File(err, filePath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errs.File(err, absPath)
	}
	if info.IsDir() {
		return nil, errs.New(errs.CategoryFile, errs.CodeFileIO, "path is a directory",
			errs.WithDetail("path", absPath))
	}

	if fieldName == "" {
		fieldName = c.uploadField
	}

	c.log.Info("Uploading file",
		zap.String("endpoint", endpoint),
		zap.String("path", absPath),
		zap.Int64("size", info.Size()))

	body, err := c.exchange(ctx, request{
		method:   http.MethodPost,
		endpoint: endpoint,
		file:     absPath,
		field:    fieldName,
	})
	if err != nil {
		return nil, err
	}
	return decode.QuasiJSON(body)
}
