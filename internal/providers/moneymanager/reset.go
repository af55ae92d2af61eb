package moneymanager

import (
	"context"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// SessionOps handles the local upstream session
type SessionOps struct {
	*Ops
}

// GetTools returns session tool definitions
func (s *SessionOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "session_reset",
			Name:        "Reset Session",
			Description: "Forget the stored upstream cookies and delete the session file",
			Returns:     "object",
		},
	}
}

// Reset clears the session
func (s *SessionOps) Reset(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if err := s.Upstream.ClearSession(); err != nil {
		return nil, err
	}
	return Success(map[string]any{"cleared": true})
}
