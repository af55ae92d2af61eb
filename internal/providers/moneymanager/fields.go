package moneymanager

// Upstream endpoints, relative to client.BasePath
const (
	endpointInitData       = "/getInitData"
	endpointDataByPeriod   = "/getDataByPeriod"
	endpointCreate         = "/create"
	endpointUpdate         = "/update"
	endpointDelete         = "/delete"
	endpointSummary        = "/getSummaryDataByPeriod"
	endpointExcel          = "/getExcelFile"
	endpointAssets         = "/getAssetData"
	endpointAssetAdd       = "/assetAdd"
	endpointAssetModify    = "/assetModify"
	endpointAssetRemove    = "/removeAsset"
	endpointCards          = "/getCardData"
	endpointCardAdd        = "/addAssetCard"
	endpointCardModify     = "/modifyCard"
	endpointTransfer       = "/moveAsset"
	endpointTransferModify = "/modifyMoveAsset"
	endpointDashboard      = "/getDashBoardData"
	endpointAssetChart     = "/getEachAssetChartData"
	endpointBackupDownload = "/money.sqlite"
	endpointBackupRestore  = "/uploadSqlFile"
)

// Upstream form and query field names
const (
	fieldStartDate      = "startDate"
	fieldEndDate        = "endDate"
	fieldMoneyBook      = "mbid"
	fieldID             = "id"
	fieldIDs            = "ids"
	fieldDate           = "mbDate"
	fieldAssetID        = "assetId"
	fieldToAssetID      = "toAssetId"
	fieldCategoryID     = "mcid"
	fieldSubcategoryID  = "mcscid"
	fieldAmount         = "mbCash"
	fieldFee            = "inOutFee"
	fieldInOutCode      = "inOutCode"
	fieldContent        = "mbContent"
	fieldMemo           = "mbDetailContent"
	fieldCurrency       = "currencyUid"
	fieldGroupID        = "assetGroupId"
	fieldAssetName      = "assetName"
	fieldAssetMoney     = "assetMoney"
	fieldIncludeInTotal = "includeYn"
	fieldLinkedAssetID  = "linkAssetId"
	fieldSettlementDay  = "notPayDate"
	fieldPaymentDay     = "payDate"
	fieldCardLimit      = "cardLimit"
)

// Row fields returned by /getDataByPeriod
const (
	rowID            = "id"
	rowDate          = "mbDate"
	rowAssetID       = "assetId"
	rowAssetName     = "assetNm"
	rowToAssetID     = "toAssetId"
	rowToAssetName   = "toAssetNm"
	rowCategoryID    = "mcid"
	rowCategoryName  = "mcNm"
	rowSubcategoryID = "mcscid"
	rowSubcategory   = "mcscNm"
	rowAmount        = "mbCash"
	rowInOutCode     = "inOutCode"
	rowInOutType     = "inOutType"
	rowContent       = "mbContent"
	rowMemo          = "mbDetailContent"
	rowCurrency      = "currency"
)

// inOutCode values used when totalling transactions
const (
	inOutIncome  = 0
	inOutExpense = 1
)

// deletedIDSeparator joins ids for /delete, which expects ":id1:id2"
const deletedIDSeparator = ":"
