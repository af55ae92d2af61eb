package moneymanager

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/decode"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// TransferOps handles moves between assets
type TransferOps struct {
	*Ops
}

func transferParameters() []types.Parameter {
	return []types.Parameter{
		{Name: "date", Type: "string", Description: "Transfer date (YYYY-MM-DD)", Required: true, Pattern: datePattern},
		{Name: "fromAssetId", Type: "string", Description: "Source asset id", Required: true},
		{Name: "toAssetId", Type: "string", Description: "Destination asset id, different from the source", Required: true},
		{Name: "amount", Type: "number", Description: "Amount, greater than zero", Required: true, Minimum: types.Float(0)},
		{Name: "fee", Type: "number", Description: "Transfer fee", Minimum: types.Float(0)},
		{Name: "content", Type: "string", Description: "Short description"},
		{Name: "memo", Type: "string", Description: "Long note"},
	}
}

// GetTools returns transfer tool definitions
func (t *TransferOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "transfer_create",
			Name:        "Create Transfer",
			Description: "Move money between two assets",
			Parameters:  transferParameters(),
			Returns:     "object",
		},
		{
			ID:   "transfer_update",
			Name: "Update Transfer",
			Description: "Modify a transfer. The server replaces the record, so the given id " +
				"is no longer valid afterwards; list transactions to find the new id.",
			Parameters: append([]types.Parameter{
				{Name: "id", Type: "string", Description: "Transfer id", Required: true},
			}, transferParameters()...),
			Returns: "object",
		},
	}
}

func (f transferFields) values() form {
	return form{
		fieldDate:      f.Date,
		fieldAssetID:   f.FromAssetID,
		fieldToAssetID: f.ToAssetID,
		fieldAmount:    formatAmount(f.Amount),
	}.
		setFloat(fieldFee, f.Fee).
		set(fieldContent, f.Content).
		set(fieldMemo, f.Memo)
}

// Create records a transfer
func (t *TransferOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args createTransferArgs
	if err := t.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := t.Upstream.Post(ctx, endpointTransfer, args.values())
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}

// Update modifies a transfer. The server implements this as delete and
// re-create, so the caller's id dies with the call.
func (t *TransferOps) Update(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args updateTransferArgs
	if err := t.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := t.Upstream.Post(ctx, endpointTransferModify, args.values().set(fieldID, args.ID))
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"success":    accepted(resp),
		"response":   resp,
		"previousId": args.ID,
		"warning": fmt.Sprintf(
			"Transfer %s was replaced by a new record and its id is no longer valid. "+
				"Use transaction_list for the date %s to find the new id.", args.ID, args.Date),
	}
	if id := decode.String(decode.Lookup(resp, "id")); id != "" && id != args.ID {
		out["newId"] = id
	}

	t.Log.Info("Transfer replaced", zap.String("previous_id", args.ID))
	return Success(out)
}
