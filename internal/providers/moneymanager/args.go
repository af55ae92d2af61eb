package moneymanager

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

const dateLayout = "2006-01-02"

var json = sonic.ConfigStd

// newValidator reports fields by their argument names and knows the
// calendar date format used by every tool.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register date validation: %v", err))
	}
	return v
}

// bind decodes tool arguments into dst and validates them. No request is
// made for arguments that fail here.
func bind(v *validator.Validate, params map[string]interface{}, dst any) error {
	if params == nil {
		params = map[string]interface{}{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return errs.Validation("arguments are not serializable", nil)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errs.Validation("arguments have the wrong types", []errs.FieldError{
			{Field: "arguments", Rule: "type", Message: err.Error()},
		})
	}
	if err := v.Struct(dst); err != nil {
		return errs.Classify(err)
	}
	if c, ok := dst.(crossChecker); ok {
		if fields := c.crossCheck(); len(fields) > 0 {
			return errs.Validation("input validation failed", fields)
		}
	}
	return nil
}

// crossChecker validates relations between fields
type crossChecker interface {
	crossCheck() []errs.FieldError
}

type periodArgs struct {
	StartDate string `json:"startDate" validate:"required,date"`
	EndDate   string `json:"endDate" validate:"required,date"`
}

func (a *periodArgs) crossCheck() []errs.FieldError {
	// Layout is zero padded, so lexical order is date order.
	if a.EndDate < a.StartDate {
		return []errs.FieldError{{Field: "endDate", Rule: "gtefield", Message: "endDate must not be before startDate"}}
	}
	return nil
}

type listTransactionsArgs struct {
	periodArgs
	MoneyBook string `json:"mbid"`
}

type transactionFields struct {
	Date          string  `json:"date" validate:"required,date"`
	AssetID       string  `json:"assetId" validate:"required"`
	CategoryID    string  `json:"categoryId" validate:"required"`
	SubcategoryID string  `json:"subcategoryId"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Content       string  `json:"content" validate:"max=500"`
	Memo          string  `json:"memo" validate:"max=2000"`
	Currency      string  `json:"currency"`
}

type createTransactionArgs struct {
	transactionFields
	// 0 income, 1 expense
	InOutCode *int `json:"inOutCode" validate:"required,oneof=0 1"`
}

type updateTransactionArgs struct {
	ID string `json:"id" validate:"required"`
	transactionFields
	// Updates also accept the transfer and adjustment codes
	InOutCode *int `json:"inOutCode" validate:"required,min=0,max=8"`
}

type deleteTransactionsArgs struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required,excludesall=:"`
}

type exportArgs struct {
	periodArgs
	OutputPath string `json:"outputPath" validate:"required"`
}

type createAssetArgs struct {
	GroupID        string   `json:"groupId" validate:"required"`
	Name           string   `json:"name" validate:"required,max=100"`
	Amount         *float64 `json:"amount"`
	Currency       string   `json:"currency"`
	IncludeInTotal *bool    `json:"includeInTotal"`
}

type updateAssetArgs struct {
	AssetID  string   `json:"assetId" validate:"required"`
	GroupID  string   `json:"groupId" validate:"required"`
	Name     string   `json:"name" validate:"required,max=100"`
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

type assetIDArgs struct {
	AssetID string `json:"assetId" validate:"required"`
}

type cardFields struct {
	Name          string   `json:"name" validate:"required,max=100"`
	LinkedAssetID string   `json:"linkedAssetId"`
	SettlementDay *int     `json:"settlementDay" validate:"omitnil,min=1,max=31"`
	PaymentDay    *int     `json:"paymentDay" validate:"omitnil,min=1,max=31"`
	Limit         *float64 `json:"limit" validate:"omitnil,gte=0"`
}

type createCardArgs struct {
	cardFields
}

type updateCardArgs struct {
	AssetID string `json:"assetId" validate:"required"`
	cardFields
}

type transferFields struct {
	Date        string   `json:"date" validate:"required,date"`
	FromAssetID string   `json:"fromAssetId" validate:"required"`
	ToAssetID   string   `json:"toAssetId" validate:"required,nefield=FromAssetID"`
	Amount      float64  `json:"amount" validate:"gt=0"`
	Fee         *float64 `json:"fee" validate:"omitnil,gte=0"`
	Content     string   `json:"content" validate:"max=500"`
	Memo        string   `json:"memo" validate:"max=2000"`
}

type createTransferArgs struct {
	transferFields
}

type updateTransferArgs struct {
	ID string `json:"id" validate:"required"`
	transferFields
}

type outputPathArgs struct {
	OutputPath string `json:"outputPath" validate:"required"`
}

type filePathArgs struct {
	FilePath string `json:"filePath" validate:"required"`
}
