package moneymanager

import (
	"context"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// DashboardOps handles reference data and overview screens
type DashboardOps struct {
	*Ops
}

// GetTools returns init and dashboard tool definitions
func (d *DashboardOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "init_get_data",
			Name:        "Get Init Data",
			Description: "Money books, categories and currencies; ids used by the other tools",
			Returns:     "object",
		},
		{
			ID:          "dashboard_get_overview",
			Name:        "Dashboard Overview",
			Description: "Current balances and monthly income and expense overview",
			Returns:     "object",
		},
		{
			ID:          "dashboard_get_asset_chart",
			Name:        "Asset Chart",
			Description: "Balance history of one asset",
			Parameters: []types.Parameter{
				{Name: "assetId", Type: "string", Description: "Asset id", Required: true},
			},
			Returns: "object",
		},
	}
}

// InitData fetches reference data
func (d *DashboardOps) InitData(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	resp, err := d.Upstream.Get(ctx, endpointInitData, nil)
	if err != nil {
		return nil, err
	}
	return Success(resp)
}

// Overview fetches the dashboard
func (d *DashboardOps) Overview(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	resp, err := d.Upstream.Get(ctx, endpointDashboard, nil)
	if err != nil {
		return nil, err
	}
	return Success(resp)
}

// AssetChart fetches the chart series of an asset
func (d *DashboardOps) AssetChart(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args assetIDArgs
	if err := d.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := d.Upstream.Post(ctx, endpointAssetChart, form{fieldAssetID: args.AssetID})
	if err != nil {
		return nil, err
	}
	return Success(resp)
}
