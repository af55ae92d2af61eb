package moneymanager

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/decode"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// TransactionOps handles ledger entries
type TransactionOps struct {
	*Ops
}

// Transaction is one normalized row of /getDataByPeriod
type Transaction struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	AssetID         string  `json:"assetId,omitempty"`
	AssetName       string  `json:"assetName,omitempty"`
	ToAssetID       string  `json:"toAssetId,omitempty"`
	ToAssetName     string  `json:"toAssetName,omitempty"`
	CategoryID      string  `json:"categoryId,omitempty"`
	CategoryName    string  `json:"categoryName,omitempty"`
	SubcategoryID   string  `json:"subcategoryId,omitempty"`
	SubcategoryName string  `json:"subcategoryName,omitempty"`
	Amount          float64 `json:"amount"`
	InOutCode       int     `json:"inOutCode"`
	InOutType       string  `json:"inOutType,omitempty"`
	Content         string  `json:"content,omitempty"`
	Memo            string  `json:"memo,omitempty"`
	Currency        string  `json:"currency,omitempty"`
}

// Totals sums amounts by direction
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// TransactionList is the transaction_list result
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Count        int           `json:"count"`
	Totals       Totals        `json:"totals"`
}

// GetTools returns transaction tool definitions
func (t *TransactionOps) GetTools() []types.Tool {
	inOut := []types.Parameter{
		{Name: "date", Type: "string", Description: "Transaction date (YYYY-MM-DD)", Required: true, Pattern: datePattern},
		{Name: "assetId", Type: "string", Description: "Asset (account) id", Required: true},
		{Name: "categoryId", Type: "string", Description: "Category id", Required: true},
		{Name: "subcategoryId", Type: "string", Description: "Subcategory id"},
		{Name: "amount", Type: "number", Description: "Amount, greater than zero", Required: true, Minimum: types.Float(0)},
		{Name: "content", Type: "string", Description: "Short description"},
		{Name: "memo", Type: "string", Description: "Long note"},
		{Name: "currency", Type: "string", Description: "Currency uid"},
	}

	create := append([]types.Parameter{}, inOut...)
	create = append(create, types.Parameter{
		Name: "inOutCode", Type: "integer", Description: "0 for income, 1 for expense",
		Required: true, Enum: []any{0, 1},
	})

	update := append([]types.Parameter{
		{Name: "id", Type: "string", Description: "Transaction id", Required: true},
	}, inOut...)
	update = append(update, types.Parameter{
		Name: "inOutCode", Type: "integer", Description: "Entry type code (0 income, 1 expense, 2-8 transfer and adjustment kinds)",
		Required: true, Minimum: types.Float(0), Maximum: types.Float(8),
	})

	return []types.Tool{
		{
			ID:          "transaction_list",
			Name:        "List Transactions",
			Description: "List transactions in a date range with income and expense totals",
			Parameters: append(periodParameters(),
				types.Parameter{Name: "mbid", Type: "string", Description: "Money book id from init_get_data"},
			),
			Returns: "object",
		},
		{
			ID:          "transaction_create",
			Name:        "Create Transaction",
			Description: "Record an income or expense",
			Parameters:  create,
			Returns:     "object",
		},
		{
			ID:          "transaction_update",
			Name:        "Update Transaction",
			Description: "Modify an existing transaction",
			Parameters:  update,
			Returns:     "object",
		},
		{
			ID:          "transaction_delete",
			Name:        "Delete Transactions",
			Description: "Delete one or more transactions by id",
			Parameters: []types.Parameter{
				{Name: "ids", Type: "array", Items: "string", Description: "Transaction ids", Required: true},
			},
			Returns: "object",
		},
	}
}

// List fetches transactions for a period
func (t *TransactionOps) List(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args listTransactionsArgs
	if err := t.bind(params, &args); err != nil {
		return nil, err
	}

	query := form{fieldStartDate: args.StartDate, fieldEndDate: args.EndDate}.
		set(fieldMoneyBook, args.MoneyBook)

	doc, err := t.Upstream.GetXML(ctx, endpointDataByPeriod, query)
	if err != nil {
		return nil, err
	}

	return Success(buildTransactionList(doc))
}

// buildTransactionList reads <data><results/><row/>...</data>. A root that
// decoded to text or nothing means the period has no transactions.
func buildTransactionList(doc any) TransactionList {
	rows := decode.Records(decode.Lookup(doc, "data", "row"))

	list := TransactionList{Transactions: make([]Transaction, 0, len(rows))}
	var income, expense []float64
	for _, row := range rows {
		tx := transactionFromRow(row)
		list.Transactions = append(list.Transactions, tx)
		switch tx.InOutCode {
		case inOutIncome:
			income = append(income, tx.Amount)
		case inOutExpense:
			expense = append(expense, tx.Amount)
		}
	}

	list.Count = len(list.Transactions)
	list.Totals = Totals{Income: floats.Sum(income), Expense: floats.Sum(expense)}
	return list
}

func transactionFromRow(row map[string]any) Transaction {
	amount, _ := decode.Float(row[rowAmount])
	code, ok := decode.Int(row[rowInOutCode])
	if !ok {
		code = -1
	}
	return Transaction{
		ID:              decode.String(row[rowID]),
		Date:            decode.String(row[rowDate]),
		AssetID:         decode.String(row[rowAssetID]),
		AssetName:       decode.String(row[rowAssetName]),
		ToAssetID:       decode.String(row[rowToAssetID]),
		ToAssetName:     decode.String(row[rowToAssetName]),
		CategoryID:      decode.String(row[rowCategoryID]),
		CategoryName:    decode.String(row[rowCategoryName]),
		SubcategoryID:   decode.String(row[rowSubcategoryID]),
		SubcategoryName: decode.String(row[rowSubcategory]),
		Amount:          amount,
		InOutCode:       code,
		InOutType:       decode.String(row[rowInOutType]),
		Content:         decode.String(row[rowContent]),
		Memo:            decode.String(row[rowMemo]),
		Currency:        decode.String(row[rowCurrency]),
	}
}

func (f transactionFields) values(inOutCode int) form {
	return form{
		fieldDate:       f.Date,
		fieldAssetID:    f.AssetID,
		fieldCategoryID: f.CategoryID,
		fieldAmount:     formatAmount(f.Amount),
		fieldInOutCode:  strconv.Itoa(inOutCode),
	}.
		set(fieldSubcategoryID, f.SubcategoryID).
		set(fieldContent, f.Content).
		set(fieldMemo, f.Memo).
		set(fieldCurrency, f.Currency)
}

// Create records a new income or expense
func (t *TransactionOps) Create(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args createTransactionArgs
	if err := t.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := t.Upstream.Post(ctx, endpointCreate, args.values(*args.InOutCode))
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"success":  accepted(resp),
		"response": resp,
	}
	if id := decode.String(decode.Lookup(resp, "id")); id != "" {
		out["id"] = id
	}
	return Success(out)
}

// Update modifies a transaction
func (t *TransactionOps) Update(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args updateTransactionArgs
	if err := t.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := t.Upstream.Post(ctx, endpointUpdate, args.values(*args.InOutCode).set(fieldID, args.ID))
	if err != nil {
		return nil, err
	}
	return mutation(resp)
}

// Delete removes transactions. The server takes every id prefixed by ':'.
func (t *TransactionOps) Delete(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args deleteTransactionsArgs
	if err := t.bind(params, &args); err != nil {
		return nil, err
	}

	ids := deletedIDSeparator + strings.Join(args.IDs, deletedIDSeparator)
	resp, err := t.Upstream.Post(ctx, endpointDelete, form{fieldIDs: ids})
	if err != nil {
		return nil, err
	}

	t.Log.Info("Deleted transactions", zap.Int("count", len(args.IDs)))
	return Success(map[string]any{
		"success":      accepted(resp),
		"deletedCount": len(args.IDs),
		"response":     resp,
	})
}
