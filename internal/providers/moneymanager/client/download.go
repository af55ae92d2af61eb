package client

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

// FileResult describes a downloaded file
type FileResult struct {
	FilePath    string `json:"filePath"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}

// DownloadFile streams an upstream response to outputPath. GET sends params
// as the query string, POST as a form. The body goes to a temporary file in
// the destination directory and is renamed into place only on success, so a
// failed transfer never leaves a partial file at outputPath.
func (c *Client) DownloadFile(ctx context.Context, method, endpoint, outputPath string, params map[string]string) (*FileResult, error) {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, errs.File(err, outputPath)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errs.File(err, dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".*.part")
	if err != nil {
		return nil, errs.File(err, dir)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	req := request{method: method, endpoint: endpoint, output: tmpPath}
	if method == http.MethodPost {
		req.form = params
	} else {
		req.query = params
	}

	resp, err := c.run(ctx, req)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if err := os.Rename(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, errs.File(err, absPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errs.File(err, absPath)
	}

	contentType := resp.Header().Get("Content-Type")
	if detected, err := mimetype.DetectFile(absPath); err == nil && (contentType == "" || !detected.Is("application/octet-stream")) {
		contentType = detected.String()
	}

	c.log.Info("Downloaded file",
		zap.String("endpoint", endpoint),
		zap.String("path", absPath),
		zap.Int64("size", info.Size()),
		zap.String("content_type", contentType))

	return &FileResult{
		FilePath:    absPath,
		FileSize:    info.Size(),
		ContentType: contentType,
	}, nil
}

// errorBody returns the body of a failed response. Streamed responses are
// read back from the output file.
func errorBody(req request, resp interface{ Body() []byte }) []byte {
	if req.output == "" {
		return resp.Body()
	}
	f, err := os.Open(req.output)
	if err != nil {
		return nil
	}
	defer f.Close()
	body, _ := io.ReadAll(io.LimitReader(f, 4*bodySnippetLimit))
	return body
}
