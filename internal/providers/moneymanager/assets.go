package moneymanager

import (
	"context"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// AssetOps handles accounts and their groups
type AssetOps struct {
	*Ops
}

// GetTools returns asset tool definitions
func (a *AssetOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "asset_list",
			Name:        "List Assets",
			Description: "List asset groups and accounts with balances",
			Returns:     "object",
		},
		{
			ID:          "asset_create",
			Name:        "Create Asset",
			Description: "Add an account to an asset group",
			Parameters: []types.Parameter{
				{Name: "groupId", Type: "string", Description: "Asset group id", Required: true},
				{Name: "name", Type: "string", Description: "Account name", Required: true},
				{Name: "amount", Type: "number", Description: "Opening balance"},
				{Name: "currency", Type: "string", Description: "Currency uid"},
				{Name: "includeInTotal", Type: "boolean", Description: "Include in the total balance (default true)"},
			},
			Returns: "object",
		},
		{
			ID:          "asset_update",
			Name:        "Update Asset",
			Description: "Rename, regroup or rebalance an account",
			Parameters: []types.Parameter{
				{Name: "assetId", Type: "string", Description: "Asset id", Required: true},
				{Name: "groupId", Type: "string", Description: "Asset group id", Required: true},
				{Name: "name", Type: "string", Description: "Account name", Required: true},
				{Name: "amount", Type: "number", Description: "Balance"},
				{Name: "currency", Type: "string", Description: "Currency uid"},
			},
			Returns: "object",
		},
		{
			ID:          "asset_delete",
			Name:        "Delete Asset",
			Description: "Remove an account",
			Parameters: []types.Parameter{
				{Name: "assetId", Type: "string", Description: "Asset id", Required: true},
			},
			Returns: "object",
		},
	}
}

// List returns the flattened asset tree
func (a *AssetOps) List(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	resp, err := a.Upstream.Get(ctx, endpointAssets, nil)
	if err != nil {
		return nil, err
	}

	groups, assets := flattenTree(resp)
	return Success(map[string]any{
		"groups": groups,
		"assets": assets,
		"count":  len(assets),
	})
}

// Create adds an account
func (a *AssetOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args createAssetArgs
	if err := a.bind(params, &args); err != nil {
		return nil, err
	}

	include := true
	if args.IncludeInTotal != nil {
		include = *args.IncludeInTotal
	}

	values := form{
		fieldGroupID:        args.GroupID,
		fieldAssetName:      args.Name,
		fieldIncludeInTotal: yn(include),
	}.
		setFloat(fieldAssetMoney, args.Amount).
		set(fieldCurrency, args.Currency)

	resp, err := a.Upstream.Post(ctx, endpointAssetAdd, values)
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}

// Update modifies an account
func (a *AssetOps) Update(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args updateAssetArgs
	if err := a.bind(params, &args); err != nil {
		return nil, err
	}

	values := form{
		fieldAssetID:   args.AssetID,
		fieldGroupID:   args.GroupID,
		fieldAssetName: args.Name,
	}.
		setFloat(fieldAssetMoney, args.Amount).
		set(fieldCurrency, args.Currency)

	resp, err := a.Upstream.Post(ctx, endpointAssetModify, values)
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}

// Delete removes an account
func (a *AssetOps) Delete(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args assetIDArgs
	if err := a.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := a.Upstream.Post(ctx, endpointAssetRemove, form{fieldAssetID: args.AssetID})
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

