package types

import "github.com/shahlaukik/money-manager-mcp/internal/shared/errs"

// Category represents service categories
type Category string

const (
	CategoryFinance Category = "finance"
	CategorySystem  Category = "system"
)

// Service represents a service definition
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents a service tool. ID is the name callers invoke it by.
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // string, number, integer, boolean, array, object
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []any    `json:"enum,omitempty"`
	Items       string   `json:"items,omitempty"` // element type for arrays
	Pattern     string   `json:"pattern,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

// Context provides execution context for a tool call
type Context struct {
	CallID    string `json:"call_id"`
	Transport string `json:"transport,omitempty"`
}

// Result represents a tool execution result
type Result struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *errs.Payload `json:"error,omitempty"`
}

// Float returns a pointer for Parameter bounds
func Float(v float64) *float64 {
	return &v
}
