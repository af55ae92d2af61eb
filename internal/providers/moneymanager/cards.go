package moneymanager

import (
	"context"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// CardOps handles credit cards, which the server models as assets
type CardOps struct {
	*Ops
}

func cardParameters() []types.Parameter {
	day := func(name, desc string) types.Parameter {
		return types.Parameter{Name: name, Type: "integer", Description: desc, Minimum: types.Float(1), Maximum: types.Float(31)}
	}
	return []types.Parameter{
		{Name: "name", Type: "string", Description: "Card name", Required: true},
		{Name: "linkedAssetId", Type: "string", Description: "Account the card is paid from"},
		day("settlementDay", "Day of month the statement closes"),
		day("paymentDay", "Day of month the balance is paid"),
		{Name: "limit", Type: "number", Description: "Credit limit", Minimum: types.Float(0)},
	}
}

// GetTools returns card tool definitions
func (c *CardOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "card_list",
			Name:        "List Cards",
			Description: "List credit cards with balances",
			Returns:     "object",
		},
		{
			ID:          "card_create",
			Name:        "Create Card",
			Description: "Add a credit card",
			Parameters:  cardParameters(),
			Returns:     "object",
		},
		{
			ID:          "card_update",
			Name:        "Update Card",
			Description: "Modify a credit card",
			Parameters: append([]types.Parameter{
				{Name: "assetId", Type: "string", Description: "Card asset id", Required: true},
			}, cardParameters()...),
			Returns: "object",
		},
	}
}

// List returns the flattened card tree
func (c *CardOps) List(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	resp, err := c.Upstream.Get(ctx, endpointCards, nil)
	if err != nil {
		return nil, err
	}

	_, cards := flattenTree(resp)
	return Success(map[string]any{
		"cards": cards,
		"count": len(cards),
	})
}

func (f cardFields) values() form {
	return form{fieldAssetName: f.Name}.
		set(fieldLinkedAssetID, f.LinkedAssetID).
		setInt(fieldSettlementDay, f.SettlementDay).
		setInt(fieldPaymentDay, f.PaymentDay).
		setFloat(fieldCardLimit, f.Limit)
}

// Create adds a card
func (c *CardOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args createCardArgs
	if err := c.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := c.Upstream.Post(ctx, endpointCardAdd, args.values())
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}

// Update modifies a card
func (c *CardOps) Update(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args updateCardArgs
	if err := c.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := c.Upstream.Post(ctx, endpointCardModify, args.values().set(fieldAssetID, args.AssetID))
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}
