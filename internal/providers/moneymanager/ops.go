package moneymanager

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/client"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// Upstream is the subset of the client the tools need
type Upstream interface {
	Get(ctx context.Context, endpoint string, params map[string]string) (any, error)
	GetXML(ctx context.Context, endpoint string, params map[string]string) (any, error)
	Post(ctx context.Context, endpoint string, form map[string]string) (any, error)
	DownloadFile(ctx context.Context, method, endpoint, outputPath string, params map[string]string) (*client.FileResult, error)
	UploadFile(ctx context.Context, endpoint, filePath, fieldName string) (any, error)
	ClearSession() error
}

// Ops provides base functionality for all tool modules
type Ops struct {
	Upstream Upstream
	Validate *validator.Validate
	Log      *logging.Logger
}

func (o *Ops) bind(params map[string]interface{}, dst any) error {
	return bind(o.Validate, params, dst)
}

// Success creates a successful result
func Success(data any) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// mutation wraps the reply of a write endpoint
func mutation(resp any) (*types.Result, error) {
	return Success(map[string]any{
		"success":  accepted(resp),
		"response": resp,
	})
}

// accepted reads the success flag of a write reply. Replies without a
// recognizable flag count as accepted since the server answered 2xx.
func accepted(resp any) bool {
	m, ok := resp.(map[string]any)
	if !ok {
		return true
	}
	for _, key := range []string{"result", "success"} {
		switch v := m[key].(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
			return v != "fail" && v != "error"
		case float64:
			return v != 0
		}
	}
	return true
}

// form collects non-empty values for an upstream form
type form map[string]string

func (f form) set(key, value string) form {
	if value != "" {
		f[key] = value
	}
	return f
}

func (f form) setFloat(key string, value *float64) form {
	if value != nil {
		f[key] = formatAmount(*value)
	}
	return f
}

func (f form) setInt(key string, value *int) form {
	if value != nil {
		f[key] = strconv.Itoa(*value)
	}
	return f
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

const datePattern = `^\d{4}-\d{2}-\d{2}$`

func periodParameters() []types.Parameter {
	return []types.Parameter{
		{Name: "startDate", Type: "string", Description: "First day of the period (YYYY-MM-DD)", Required: true, Pattern: datePattern},
		{Name: "endDate", Type: "string", Description: "Last day of the period (YYYY-MM-DD)", Required: true, Pattern: datePattern},
	}
}
