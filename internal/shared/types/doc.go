// Package types provides shared data structures for providers, the registry
// and the MCP transports.
//
// Core Types:
//   - Service: Provider definition with its tools
//   - Tool, Parameter: Tool definition, rendered as JSON Schema by transports
//   - Context: Per-call execution context
//   - Result: Standard tool result carrying data or a structured error payload
//
// Example Usage:
//
//	tool := types.Tool{
//	    ID:          "transaction_list",
//	    Description: "List transactions in a date range",
//	    Parameters: []types.Parameter{
//	        {Name: "startDate", Type: "string", Required: true, Pattern: `^\d{4}-\d{2}-\d{2}$`},
//	    },
//	}
package types
