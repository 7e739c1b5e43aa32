package models

import (
	"time"
)

// ProjectMode distinguishes the quick single-page setup from the full
// assumption editor. Both run through the same engine.
type ProjectMode string

const (
	ModeSimplified ProjectMode = "simplified"
	ModeAdvanced   ProjectMode = "advanced"
)

// Project is the root record every other assumption hangs off.
// StartDate fixes period 0; HorizonYears must be >= 1.
type Project struct {
	ID           string      `json:"id" validate:"required"`
	Name         string      `json:"name"`
	HorizonYears int         `json:"horizon_years" validate:"gte=1"`
	StartDate    time.Time   `json:"start_date"`
	Currency     string      `json:"currency"`
	Mode         ProjectMode `json:"mode"`
}

// HorizonMonths returns the number of monthly periods covered by the plan.
func (p Project) HorizonMonths() int {
	return p.HorizonYears * 12
}

// ProductService is a sellable unit (product or service line).
// Seasonality, when present, holds 12 direct monthly multipliers; they do
// not need to sum to 12.
type ProductService struct {
	ID          string    `json:"id" validate:"required"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	UnitPrice   float64   `json:"unit_price" validate:"gte=0"`
	UnitCost    float64   `json:"unit_cost" validate:"gte=0"`
	VATRate     float64   `json:"vat_rate" validate:"gte=0"`
	Seasonality []float64 `json:"seasonality,omitempty"`
}

// SeasonalityWeight returns the multiplier for a calendar-style month 1..12.
// Defaults to 1 when no curve is set.
func (p ProductService) SeasonalityWeight(month int) float64 {
	if len(p.Seasonality) != 12 || month < 1 || month > 12 {
		return 1.0
	}
	return p.Seasonality[month-1]
}

// SalesProjection is one forecast cell: volume of a product in plan year Y,
// month M. Year is 1-based from project start (year 1 = first plan year),
// Month is 1..12. At most one row may exist per (product, year, month).
type SalesProjection struct {
	ProductID string  `json:"product_id" validate:"required"`
	Year      int     `json:"year" validate:"gte=1"`
	Month     int     `json:"month" validate:"gte=1,lte=12"`
	Volume    float64 `json:"volume" validate:"gte=0"`
}

// PeriodIndex converts the (year, month) pair to a 0-based monthly period.
func (s SalesProjection) PeriodIndex() int {
	return (s.Year-1)*12 + (s.Month - 1)
}

// DepreciationMethod selects the schedule shape for a Capex item.
type DepreciationMethod string

const (
	DepreciationLinear     DepreciationMethod = "linear"
	DepreciationDegressive DepreciationMethod = "degressive"
)

// Capex is a capital expenditure. Its depreciation schedule is always
// derived on demand, never persisted.
type Capex struct {
	ID              string             `json:"id" validate:"required"`
	Label           string             `json:"label"`
	Amount          float64            `json:"amount" validate:"gte=0"`
	AcquisitionDate time.Time          `json:"acquisition_date"`
	LifeMonths      int                `json:"life_months"`
	Method          DepreciationMethod `json:"method"`
	SalvageValue    float64            `json:"salvage_value" validate:"gte=0"`
	VATRecoverable  bool               `json:"vat_recoverable"`
}

// OpexPeriodicity controls how a nominal amount spreads over months.
type OpexPeriodicity string

const (
	PeriodicityMonthly   OpexPeriodicity = "monthly"
	PeriodicityQuarterly OpexPeriodicity = "quarterly"
	PeriodicityAnnual    OpexPeriodicity = "annual"
)

// Opex is an operating expense line. Fixed lines carry Amount at the given
// periodicity; variable lines are a percentage of period revenue. Indexed
// lines compound with the plan's annual inflation rate. StartPeriod and
// EndPeriod (0-based, inclusive) bound the active window; nil means open.
type Opex struct {
	ID            string          `json:"id" validate:"required"`
	Label         string          `json:"label"`
	Amount        float64         `json:"amount" validate:"gte=0"`
	Periodicity   OpexPeriodicity `json:"periodicity"`
	Variable      bool            `json:"variable"`
	VarPctOfSales float64         `json:"var_pct_of_sales" validate:"gte=0"`
	Indexed       bool            `json:"indexed"`
	StartPeriod   *int            `json:"start_period,omitempty"`
	EndPeriod     *int            `json:"end_period,omitempty"`
}

// ActiveAt reports whether the line contributes in the given period.
func (o Opex) ActiveAt(period int) bool {
	if o.StartPeriod != nil && period < *o.StartPeriod {
		return false
	}
	if o.EndPeriod != nil && period > *o.EndPeriod {
		return false
	}
	return true
}

// PayrollRole is a staffing profile: gross monthly cost per head plus
// employer charges and flat monthly benefits.
type PayrollRole struct {
	ID                 string  `json:"id" validate:"required"`
	Name               string  `json:"name"`
	GrossMonthly       float64 `json:"gross_monthly" validate:"gte=0"`
	EmployerChargesPct float64 `json:"employer_charges_pct" validate:"gte=0"`
	BenefitsMonthly    float64 `json:"benefits_monthly" validate:"gte=0"`
}

// HeadcountPlan multiplies a role for a given plan month.
type HeadcountPlan struct {
	RoleID    string  `json:"role_id" validate:"required"`
	Year      int     `json:"year" validate:"gte=1"`
	Month     int     `json:"month" validate:"gte=1,lte=12"`
	Headcount float64 `json:"headcount" validate:"gte=0"`
}

// PeriodIndex converts the (year, month) pair to a 0-based monthly period.
func (h HeadcountPlan) PeriodIndex() int {
	return (h.Year-1)*12 + (h.Month - 1)
}

// Loan is a financing instrument. Grace windows are counted in months from
// disbursement; BalloonPct is the fraction of principal due at term.
type Loan struct {
	ID                   string    `json:"id" validate:"required"`
	Label                string    `json:"label"`
	Principal            float64   `json:"principal" validate:"gte=0"`
	AnnualRate           float64   `json:"annual_rate"`
	TermMonths           int       `json:"term_months"`
	GracePrincipalMonths int       `json:"grace_principal_months" validate:"gte=0"`
	GraceInterestMonths  int       `json:"grace_interest_months" validate:"gte=0"`
	FeesPct              float64   `json:"fees_pct" validate:"gte=0"`
	InsurancePct         float64   `json:"insurance_pct" validate:"gte=0"`
	BalloonPct           float64   `json:"balloon_pct" validate:"gte=0,lte=1"`
	DisbursementDate     time.Time `json:"disbursement_date"`
	CovenantDSCR         float64   `json:"covenant_dscr"`
}

// TaxSettings holds the fiscal policy parameters for a project.
type TaxSettings struct {
	CorporateTaxRate float64 `json:"corporate_tax_rate" validate:"gte=0,lte=1"`
	VATRate          float64 `json:"vat_rate" validate:"gte=0"`
}

// WorkingCapital is the receivable/payable/inventory day policy driving the
// BFR. Advance percentages adjust the need directly: client advances reduce
// it, supplier advances increase it.
type WorkingCapital struct {
	DSODays            float64 `json:"dso_days" validate:"gte=0"`
	DPODays            float64 `json:"dpo_days" validate:"gte=0"`
	InventoryDays      float64 `json:"inventory_days" validate:"gte=0"`
	ClientAdvancePct   float64 `json:"client_advance_pct" validate:"gte=0"`
	SupplierAdvancePct float64 `json:"supplier_advance_pct" validate:"gte=0"`
}

// Assumptions holds the project-wide scalar parameters. One active set per
// project; a Scenario may perturb it multiplicatively.
type Assumptions struct {
	DiscountRate      float64 `json:"discount_rate" validate:"gte=-0.99"`
	InflationRate     float64 `json:"inflation_rate"`
	FXRate            float64 `json:"fx_rate"`
	SensitivitySpread float64 `json:"sensitivity_spread" validate:"gte=0"`
	InitialEquity     float64 `json:"initial_equity" validate:"gte=0"`
	InitialCash       float64 `json:"initial_cash" validate:"gte=0"`
}

// ScenarioType classifies a scenario overlay.
type ScenarioType string

const (
	ScenarioBase        ScenarioType = "base"
	ScenarioOptimistic  ScenarioType = "optimistic"
	ScenarioPessimistic ScenarioType = "pessimistic"
	ScenarioStress      ScenarioType = "stress"
)

// Scenario is a named multiplicative overlay on the base assumptions. A nil
// scenario (scenario_id = null) is the implicit base case; multipliers
// default to 1 when zero-valued so partially filled overlays stay neutral.
type Scenario struct {
	ID               string       `json:"id" validate:"required"`
	Name             string       `json:"name"`
	Type             ScenarioType `json:"type"`
	VolumeMultiplier float64      `json:"volume_multiplier"`
	PriceMultiplier  float64      `json:"price_multiplier"`
	OpexMultiplier   float64      `json:"opex_multiplier"`
}

// AssumptionBundle is the full input surface of the engine: everything the
// caller has loaded for one project, handed over as plain records. The
// engine performs no I/O of its own.
type AssumptionBundle struct {
	Project        Project           `json:"project" validate:"required"`
	Products       []ProductService  `json:"products" validate:"dive"`
	Sales          []SalesProjection `json:"sales" validate:"dive"`
	Capex          []Capex           `json:"capex" validate:"dive"`
	Opex           []Opex            `json:"opex" validate:"dive"`
	Payroll        []PayrollRole     `json:"payroll" validate:"dive"`
	Headcount      []HeadcountPlan   `json:"headcount" validate:"dive"`
	Loans          []Loan            `json:"loans" validate:"dive"`
	Tax            TaxSettings       `json:"tax"`
	WorkingCapital WorkingCapital    `json:"working_capital"`
	Assumptions    Assumptions       `json:"assumptions"`
	Scenario       *Scenario         `json:"scenario,omitempty"`
}

// ComputeTrigger requests a (re)computation for one (project, scenario) key.
type ComputeTrigger struct {
	ProjectID          string  `json:"project_id" validate:"required"`
	ScenarioID         *string `json:"scenario_id,omitempty"`
	ForceRecalculation bool    `json:"force_recalculation"`
}
