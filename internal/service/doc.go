// Package service provides the tool registry.
//
// The registry maps each tool name to the provider that serves it and is
// the outermost error boundary: whatever a provider returns or panics with
// leaves Execute as a Result whose Error is a classified errs.Payload.
//
// Components:
//   - Registry: provider catalog and tool index
//   - Provider: interface for tool implementations
//
// Every call gets a correlation id (uuid) when the transport supplies none,
// and is timed into the monitoring package.
//
// Example Usage:
//
//	registry := service.NewRegistry(log, metrics)
//	registry.Register(moneymanager.NewProvider(client, log))
//	result := registry.Execute(ctx, "transaction_list", params, appCtx)
package service
