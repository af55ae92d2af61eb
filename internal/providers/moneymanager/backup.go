package moneymanager

import (
	"context"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

const sqliteMIME = "application/vnd.sqlite3"

// BackupOps handles database backup and restore
type BackupOps struct {
	*Ops
}

// GetTools returns backup tool definitions
func (b *BackupOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "backup_download",
			Name:        "Download Backup",
			Description: "Download the Money Manager SQLite database",
			Parameters: []types.Parameter{
				{Name: "outputPath", Type: "string", Description: "Destination file path", Required: true},
			},
			Returns: "object",
		},
		{
			ID:   "backup_restore",
			Name: "Restore Backup",
			Description: "Upload a SQLite database to the app, replacing its data. " +
				"Download a backup first; this cannot be undone.",
			Parameters: []types.Parameter{
				{Name: "filePath", Type: "string", Description: "SQLite backup file to upload", Required: true},
			},
			Returns: "object",
		},
	}
}

// Download saves the database to outputPath
func (b *BackupOps) Download(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args outputPathArgs
	if err := b.bind(params, &args); err != nil {
		return nil, err
	}

	file, err := b.Upstream.DownloadFile(ctx, http.MethodGet, endpointBackupDownload, args.OutputPath, nil)
	if err != nil {
		return nil, err
	}
	return Success(file)
}

// Restore uploads a database. Files that are not SQLite are rejected
// locally since the server would otherwise replace its data with them.
func (b *BackupOps) Restore(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args filePathArgs
	if err := b.bind(params, &args); err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectFile(args.FilePath)
	if err != nil {
		return nil, errs.File(err, args.FilePath)
	}
	if !mtype.Is(sqliteMIME) {
		return nil, errs.Validation("backup file is not a SQLite database", []errs.FieldError{
			{Field: "filePath", Rule: "sqlite", Message: "detected " + mtype.String()},
		})
	}

	resp, err := b.Upstream.UploadFile(ctx, endpointBackupRestore, args.FilePath, "")
	if err != nil {
		return nil, err
	}

	b.Log.Warn("Backup restored", zap.String("path", args.FilePath))
	return mutation(resp)
}
