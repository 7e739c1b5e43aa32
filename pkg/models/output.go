package models

// FinancialOutput is one consolidated ledger row: the canonical result of a
// computation for (project, scenario, year, month). Rows are always derived
// and replaced as one atomic set, never edited in place.
type FinancialOutput struct {
	ProjectID   string  `json:"project_id"`
	ScenarioID  *string `json:"scenario_id,omitempty"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	PeriodIndex int     `json:"period_index"`

	// Income statement
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	GrossProfit  float64 `json:"gross_profit"`
	Opex         float64 `json:"opex"`
	Payroll      float64 `json:"payroll"`
	EBITDA       float64 `json:"ebitda"`
	Depreciation float64 `json:"depreciation"`
	EBIT         float64 `json:"ebit"`
	Interest     float64 `json:"interest"`
	Tax          float64 `json:"tax"`
	NetIncome    float64 `json:"net_income"`

	// Cash flow
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	InvestingCashFlow float64 `json:"investing_cash_flow"`
	FinancingCashFlow float64 `json:"financing_cash_flow"`
	NetCashFlow       float64 `json:"net_cash_flow"`
	CashBalance       float64 `json:"cash_balance"`

	// Working capital
	BFR       float64 `json:"bfr"`
	BFRChange float64 `json:"bfr_change"`

	// Balance rollups used by the ratio block
	TotalAssets float64 `json:"total_assets"`
	TotalDebt   float64 `json:"total_debt"`
	Equity      float64 `json:"equity"`

	// Ratios (zero-denominator ratios are reported as 0, never NaN)
	GrossMargin  float64 `json:"gross_margin"`
	EBITDAMargin float64 `json:"ebitda_margin"`
	NetMargin    float64 `json:"net_margin"`
	ROA          float64 `json:"roa"`
	ROE          float64 `json:"roe"`
	CurrentRatio float64 `json:"current_ratio"`
	DebtToEquity float64 `json:"debt_to_equity"`
	DSCR         float64 `json:"dscr"`
}

// UndefinedReason codes explain why a metric has no value. An undefined
// metric is a legitimate result, not an error.
type UndefinedReason string

const (
	ReasonNoSignChange  UndefinedReason = "no_sign_change"
	ReasonNeverRecovers UndefinedReason = "never_recovers"
	ReasonNoConvergence UndefinedReason = "no_convergence"
)

// Metric is an optional float: Defined is false when the underlying
// computation has no answer (e.g. IRR without a sign change).
type Metric struct {
	Value   float64         `json:"value"`
	Defined bool            `json:"defined"`
	Reason  UndefinedReason `json:"reason,omitempty"`
}

// DefinedMetric builds a defined metric.
func DefinedMetric(v float64) Metric {
	return Metric{Value: v, Defined: true}
}

// UndefinedMetric builds an undefined metric carrying a reason code.
func UndefinedMetric(reason UndefinedReason) Metric {
	return Metric{Defined: false, Reason: reason}
}

// PaybackPeriod expresses the discounted payback (DRCI) in calendar terms.
type PaybackPeriod struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// SensitivityBand holds the +/- revenue-spread variants of NPV and IRR.
type SensitivityBand struct {
	NPVOptimistic  float64 `json:"npv_optimistic"`
	NPVPessimistic float64 `json:"npv_pessimistic"`
	IRROptimistic  Metric  `json:"irr_optimistic"`
	IRRPessimistic Metric  `json:"irr_pessimistic"`
}

// InvestmentAnalysis is the on-demand summary derived from a committed
// FinancialOutput cash-flow series.
type InvestmentAnalysis struct {
	ProjectID          string          `json:"project_id"`
	ScenarioID         *string         `json:"scenario_id,omitempty"`
	DiscountRate       float64         `json:"discount_rate"`
	InitialInvestment  float64         `json:"initial_investment"`
	NPV                float64         `json:"npv"`
	IRR                Metric          `json:"irr"`
	DRCI               Metric          `json:"drci"`
	SimplePayback      Metric          `json:"simple_payback"`
	Payback            *PaybackPeriod  `json:"payback,omitempty"`
	ProfitabilityIndex float64         `json:"profitability_index"`
	Sensitivity        SensitivityBand `json:"sensitivity"`
}
