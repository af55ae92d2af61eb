package moneymanager

import (
	"context"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// Provider exposes the Money Manager web server as tools
type Provider struct {
	// Module instances
	dashboardOps   *DashboardOps
	transactionOps *TransactionOps
	summaryOps     *SummaryOps
	assetOps       *AssetOps
	cardOps        *CardOps
	transferOps    *TransferOps
	backupOps      *BackupOps
	sessionOps     *SessionOps
}

// NewProvider creates the provider on top of an upstream client
func NewProvider(upstream Upstream, log *logging.Logger) *Provider {
	if log == nil {
		log = logging.NewNop()
	}
	ops := &Ops{
		Upstream: upstream,
		Validate: newValidator(),
		Log:      log.Named("moneymanager"),
	}

	return &Provider{
		dashboardOps:   &DashboardOps{Ops: ops},
		transactionOps: &TransactionOps{Ops: ops},
		summaryOps:     &SummaryOps{Ops: ops},
		assetOps:       &AssetOps{Ops: ops},
		cardOps:        &CardOps{Ops: ops},
		transferOps:    &TransferOps{Ops: ops},
		backupOps:      &BackupOps{Ops: ops},
		sessionOps:     &SessionOps{Ops: ops},
	}
}

// Definition returns service metadata with all module tools
func (p *Provider) Definition() types.Service {
	tools := []types.Tool{}
	tools = append(tools, p.dashboardOps.GetTools()...)
	tools = append(tools, p.transactionOps.GetTools()...)
	tools = append(tools, p.summaryOps.GetTools()...)
	tools = append(tools, p.assetOps.GetTools()...)
	tools = append(tools, p.cardOps.GetTools()...)
	tools = append(tools, p.transferOps.GetTools()...)
	tools = append(tools, p.backupOps.GetTools()...)
	tools = append(tools, p.sessionOps.GetTools()...)

	return types.Service{
		ID:          "moneymanager",
		Name:        "Money Manager",
		Description: "Personal finance data from the Money Manager app's web server",
		Category:    types.CategoryFinance,
		Capabilities: []string{
			"transactions", "summary", "export",
			"assets", "cards", "transfers",
			"dashboard", "backup", "restore", "session",
		},
		Tools: tools,
	}
}

// Execute routes to appropriate module
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "init_get_data":
		return p.dashboardOps.InitData(ctx, params, appCtx)

	// Transaction operations
	case "transaction_list":
		return p.transactionOps.List(ctx, params, appCtx)
	case "transaction_create":
		return p.transactionOps.Create(ctx, params, appCtx)
	case "transaction_update":
		return p.transactionOps.Update(ctx, params, appCtx)
	case "transaction_delete":
		return p.transactionOps.Delete(ctx, params, appCtx)

	// Summary operations
	case "summary_get":
		return p.summaryOps.Get(ctx, params, appCtx)
	case "summary_export_excel":
		return p.summaryOps.Export(ctx, params, appCtx)

	// Asset operations
	case "asset_list":
		return p.assetOps.List(ctx, params, appCtx)
	case "asset_create":
		return p.assetOps.Create(ctx, params, appCtx)
	case "asset_update":
		return p.assetOps.Update(ctx, params, appCtx)
	case "asset_delete":
		return p.assetOps.Delete(ctx, params, appCtx)

	// Card operations
	case "card_list":
		return p.cardOps.List(ctx, params, appCtx)
	case "card_create":
		return p.cardOps.Create(ctx, params, appCtx)
	case "card_update":
		return p.cardOps.Update(ctx, params, appCtx)

	// Transfer operations
	case "transfer_create":
		return p.transferOps.Create(ctx, params, appCtx)
	case "transfer_update":
		return p.transferOps.Update(ctx, params, appCtx)

	// Dashboard operations
	case "dashboard_get_overview":
		return p.dashboardOps.Overview(ctx, params, appCtx)
	case "dashboard_get_asset_chart":
		return p.dashboardOps.AssetChart(ctx, params, appCtx)

	// Backup operations
	case "backup_download":
		return p.backupOps.Download(ctx, params, appCtx)
	case "backup_restore":
		return p.backupOps.Restore(ctx, params, appCtx)

	case "session_reset":
		return p.sessionOps.Reset(ctx, params, appCtx)

	default:
		return nil, errs.New(errs.CategoryValidation, errs.CodeValidation, "unknown tool",
			errs.WithDetail("tool", toolID))
	}
}
