package consolidation

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"bizplan_engine/pkg/core/store"
	"bizplan_engine/pkg/models"
)

const tolerance = 1e-6

// baselineBundle is a one-year plan with one product sold at 10,000/unit
// (cost 4,000), 10 units every month, and a flat 3,000/month operating
// cost. No payroll, capex, loans, working capital or tax, so every line
// of the statement can be verified by hand:
//
//	revenue = 100,000   COGS = 40,000   gross = 60,000
//	EBITDA  = 60,000 - 3,000 = 57,000 = EBIT = net income
func baselineBundle() models.AssumptionBundle {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sales := make([]models.SalesProjection, 0, 12)
	for m := 1; m <= 12; m++ {
		sales = append(sales, models.SalesProjection{ProductID: "widget", Year: 1, Month: m, Volume: 10})
	}
	return models.AssumptionBundle{
		Project: models.Project{ID: "plan-1", HorizonYears: 1, StartDate: start},
		Products: []models.ProductService{
			{ID: "widget", UnitPrice: 10000, UnitCost: 4000},
		},
		Sales: sales,
		Opex: []models.Opex{
			{ID: "rent", Amount: 3000, Periodicity: models.PeriodicityMonthly},
		},
	}
}

func TestCompute_EndToEnd(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()

	rows, err := engine.Compute(context.Background(), bundle, models.ComputeTrigger{ProjectID: "plan-1"})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("got %d rows, want 12", len(rows))
	}

	for m, r := range rows {
		if math.Abs(r.Revenue-100000) > tolerance {
			t.Errorf("month %d revenue = %v, want 100000", m, r.Revenue)
		}
		if math.Abs(r.COGS-40000) > tolerance {
			t.Errorf("month %d COGS = %v, want 40000", m, r.COGS)
		}
		if math.Abs(r.EBITDA-57000) > tolerance {
			t.Errorf("month %d EBITDA = %v, want 57000", m, r.EBITDA)
		}
		if math.Abs(r.NetIncome-57000) > tolerance {
			t.Errorf("month %d net income = %v, want 57000", m, r.NetIncome)
		}
		// Accounting identity: EBIT = EBITDA - depreciation, every period.
		if math.Abs(r.EBIT-(r.EBITDA-r.Depreciation)) > tolerance {
			t.Errorf("month %d EBIT identity broken: EBIT=%v EBITDA=%v dep=%v", m, r.EBIT, r.EBITDA, r.Depreciation)
		}
		// Cash accumulates 57,000 each month from a zero opening balance.
		want := 57000.0 * float64(m+1)
		if math.Abs(r.CashBalance-want) > tolerance {
			t.Errorf("month %d cash = %v, want %v", m, r.CashBalance, want)
		}
		if r.PeriodIndex != m || r.Year != 1 || r.Month != m+1 {
			t.Errorf("month %d calendar = year %d month %d index %d", m, r.Year, r.Month, r.PeriodIndex)
		}
	}

	if got := engine.StateOf("plan-1", nil); got != StateCommitted {
		t.Errorf("state = %q, want committed", got)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	trigger := models.ComputeTrigger{ProjectID: "plan-1", ForceRecalculation: true}

	first, err := engine.Compute(context.Background(), bundle, trigger)
	if err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	second, err := engine.Compute(context.Background(), bundle, trigger)
	if err != nil {
		t.Fatalf("second Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-running the same bundle produced a different row set")
	}
}

func TestCompute_ReturnsCommittedWithoutForce(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	trigger := models.ComputeTrigger{ProjectID: "plan-1"}

	first, err := engine.Compute(context.Background(), bundle, trigger)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// A changed bundle without ForceRecalculation still returns the
	// committed set; recomputation is explicit.
	bundle.Opex[0].Amount = 99999
	second, err := engine.Compute(context.Background(), bundle, trigger)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("non-forced trigger recomputed instead of returning the committed set")
	}
}

func TestCompute_OrphanSalesRowIgnored(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	bundle.Sales = append(bundle.Sales, models.SalesProjection{ProductID: "ghost", Year: 1, Month: 1, Volume: 500})

	rows, err := engine.Compute(context.Background(), bundle, models.ComputeTrigger{ProjectID: "plan-1"})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(rows[0].Revenue-100000) > tolerance {
		t.Errorf("month 0 revenue = %v, want 100000 (orphan row must not contribute)", rows[0].Revenue)
	}
}

func TestCompute_ProjectMismatch(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	_, err := engine.Compute(context.Background(), baselineBundle(), models.ComputeTrigger{ProjectID: "other"})
	if !errors.Is(err, ErrProjectMismatch) {
		t.Errorf("err = %v, want ErrProjectMismatch", err)
	}
}

func TestCompute_ScenarioKeyMismatch(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	ctx := context.Background()
	scenarioID := "optimistic"

	// A scenario trigger with a base bundle would commit base-built rows
	// under the scenario key.
	_, err := engine.Compute(ctx, baselineBundle(), models.ComputeTrigger{ProjectID: "plan-1", ScenarioID: &scenarioID})
	if !errors.Is(err, ErrProjectMismatch) {
		t.Errorf("scenario trigger on base bundle: err = %v, want ErrProjectMismatch", err)
	}

	// And the converse: a scenario bundle aimed at the base key.
	withScenario := baselineBundle()
	withScenario.Scenario = &models.Scenario{ID: scenarioID, VolumeMultiplier: 1.2}
	_, err = engine.Compute(ctx, withScenario, models.ComputeTrigger{ProjectID: "plan-1"})
	if !errors.Is(err, ErrProjectMismatch) {
		t.Errorf("base trigger on scenario bundle: err = %v, want ErrProjectMismatch", err)
	}

	// Nothing may have been committed under either key.
	if rows, _ := engine.Committed(ctx, "plan-1", &scenarioID); len(rows) != 0 {
		t.Errorf("scenario key holds %d rows after rejected triggers", len(rows))
	}
	if rows, _ := engine.Committed(ctx, "plan-1", nil); len(rows) != 0 {
		t.Errorf("base key holds %d rows after rejected triggers", len(rows))
	}
}

func TestCompute_InvalidInputKeepsCommittedState(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	trigger := models.ComputeTrigger{ProjectID: "plan-1", ForceRecalculation: true}

	if _, err := engine.Compute(context.Background(), bundle, trigger); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	bad := baselineBundle()
	bad.Sales[0].Volume = -5
	_, err := engine.Compute(context.Background(), bad, trigger)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// A rejected trigger must not disturb the committed set or its state.
	if got := engine.StateOf("plan-1", nil); got != StateCommitted {
		t.Errorf("state after rejection = %q, want committed", got)
	}
	rows, err := engine.Committed(context.Background(), "plan-1", nil)
	if err != nil || len(rows) != 12 {
		t.Errorf("committed set after rejection: %d rows, err %v", len(rows), err)
	}
}

func TestCompute_InvalidLoanKeepsCommittedState(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	trigger := models.ComputeTrigger{ProjectID: "plan-1", ForceRecalculation: true}

	if _, err := engine.Compute(context.Background(), baselineBundle(), trigger); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// A loan with a negative rate is bad input, not a computation failure:
	// it must be rejected up front without disturbing the committed set.
	bad := baselineBundle()
	bad.Loans = []models.Loan{{
		ID:               "l-bad",
		Principal:        50000,
		AnnualRate:       -0.05,
		TermMonths:       12,
		DisbursementDate: bad.Project.StartDate,
	}}
	_, err := engine.Compute(context.Background(), bad, trigger)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	if got := engine.StateOf("plan-1", nil); got != StateCommitted {
		t.Errorf("state after invalid-loan rejection = %q, want committed", got)
	}
	rows, err := engine.Committed(context.Background(), "plan-1", nil)
	if err != nil || len(rows) != 12 {
		t.Errorf("committed set after rejection: %d rows, err %v", len(rows), err)
	}
}

func TestCompute_LoanFlowsThroughLedger(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	bundle.Tax = models.TaxSettings{CorporateTaxRate: 0.25}
	// 120,000 disbursed at start, 6% annual over 12 months, 1% fees.
	// Monthly rate 0.5%, annuity payment
	// 120,000 x 0.005 / (1 - 1.005^-12) = 10,327.9716.
	bundle.Loans = []models.Loan{{
		ID:               "equip",
		Principal:        120000,
		AnnualRate:       0.06,
		TermMonths:       12,
		FeesPct:          0.01,
		DisbursementDate: bundle.Project.StartDate,
	}}

	rows, err := engine.Compute(context.Background(), bundle, models.ComputeTrigger{ProjectID: "plan-1"})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	m0 := rows[0]
	// Month 0 interest: 120,000 x 0.005 = 600.
	if math.Abs(m0.Interest-600) > tolerance {
		t.Errorf("month 0 interest = %v, want 600", m0.Interest)
	}
	// Tax deducts interest: (57,000 - 600) x 0.25 = 14,100, so net income
	// is 57,000 - 600 - 14,100 = 42,300.
	if math.Abs(m0.Tax-14100) > tolerance {
		t.Errorf("month 0 tax = %v, want 14100", m0.Tax)
	}
	if math.Abs(m0.NetIncome-42300) > tolerance {
		t.Errorf("month 0 net income = %v, want 42300", m0.NetIncome)
	}
	// Financing flow: +120,000 disbursed - 9,727.9716 principal
	// - 1,200 fees = 109,072.0284.
	if math.Abs(m0.FinancingCashFlow-109072.0284351501) > 1e-4 {
		t.Errorf("month 0 financing CF = %v, want 109072.03", m0.FinancingCashFlow)
	}
	// DSCR: operating CF over debt service, 42,300 / 10,327.9716 = 4.0957.
	if math.Abs(m0.DSCR-4.095673553552699) > 1e-6 {
		t.Errorf("month 0 DSCR = %v, want 4.0957", m0.DSCR)
	}

	// Month 1 interest accrues on the reduced balance:
	// 110,272.0284 x 0.005 = 551.3601.
	if math.Abs(rows[1].Interest-551.3601421757505) > 1e-4 {
		t.Errorf("month 1 interest = %v, want 551.36", rows[1].Interest)
	}
	// The loan is fully repaid by the final month.
	if math.Abs(rows[11].TotalDebt) > 1e-6 {
		t.Errorf("month 11 total debt = %v, want 0", rows[11].TotalDebt)
	}
}

// gateRepo blocks inside ReplaceAll until released, so a test can hold a
// computation in flight.
type gateRepo struct {
	*store.MemoryRepo
	entered chan struct{}
	release chan struct{}
}

func (g *gateRepo) ReplaceAll(ctx context.Context, projectID string, scenarioID *string, rows []models.FinancialOutput) error {
	close(g.entered)
	<-g.release
	return g.MemoryRepo.ReplaceAll(ctx, projectID, scenarioID, rows)
}

func TestCompute_RejectsConcurrentTrigger(t *testing.T) {
	repo := &gateRepo{
		MemoryRepo: store.NewMemoryRepo(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	engine := NewEngine(repo, nil)
	bundle := baselineBundle()
	trigger := models.ComputeTrigger{ProjectID: "plan-1", ForceRecalculation: true}

	done := make(chan error, 1)
	go func() {
		_, err := engine.Compute(context.Background(), bundle, trigger)
		done <- err
	}()

	<-repo.entered
	_, err := engine.Compute(context.Background(), bundle, trigger)
	if !errors.Is(err, ErrComputationInFlight) {
		t.Errorf("concurrent trigger err = %v, want ErrComputationInFlight", err)
	}

	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	if got := engine.StateOf("plan-1", nil); got != StateCommitted {
		t.Errorf("state = %q, want committed", got)
	}
}

func TestInvestmentSummary(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	// 600,000 of equipment at project start, straight-line over 60 months:
	// 10,000/month of depreciation. Operating cash flow stays at 57,000
	// (47,000 net income + 10,000 depreciation added back).
	bundle.Capex = []models.Capex{{
		ID:              "machine",
		Amount:          600000,
		AcquisitionDate: bundle.Project.StartDate,
		LifeMonths:      60,
		Method:          models.DepreciationLinear,
	}}

	a, err := engine.InvestmentSummary(context.Background(), bundle, models.ComputeTrigger{ProjectID: "plan-1", ForceRecalculation: true})
	if err != nil {
		t.Fatalf("InvestmentSummary: %v", err)
	}

	if math.Abs(a.InitialInvestment-600000) > tolerance {
		t.Errorf("initial investment = %v, want 600000", a.InitialInvestment)
	}
	// Discount rate 0: NPV = -600,000 + 12 x 57,000 = 84,000.
	if math.Abs(a.NPV-84000) > tolerance {
		t.Errorf("NPV = %v, want 84000", a.NPV)
	}
	if !a.IRR.Defined {
		t.Errorf("IRR undefined, reason %q", a.IRR.Reason)
	}
	if a.IRR.Defined && a.IRR.Value <= 0 {
		t.Errorf("IRR = %v, want > 0 for a positive-NPV plan", a.IRR.Value)
	}
	// Cumulative recovery: -600k shrinking by 57k/month reaches -30k after
	// ten flows and crosses zero 30/57 into the eleventh month.
	if !a.DRCI.Defined {
		t.Fatalf("DRCI undefined, reason %q", a.DRCI.Reason)
	}
	if math.Abs(a.DRCI.Value-(10.0+30000.0/57000.0)) > tolerance {
		t.Errorf("DRCI = %v months, want 10.526", a.DRCI.Value)
	}

	// Sensitivity at the default 20% spread, volumes scaled through the
	// same pipeline: optimistic monthly flow 69,000, pessimistic 45,000.
	if math.Abs(a.Sensitivity.NPVOptimistic-228000) > 1e-3 {
		t.Errorf("optimistic NPV = %v, want 228000", a.Sensitivity.NPVOptimistic)
	}
	if math.Abs(a.Sensitivity.NPVPessimistic-(-60000)) > 1e-3 {
		t.Errorf("pessimistic NPV = %v, want -60000", a.Sensitivity.NPVPessimistic)
	}
	if !(a.Sensitivity.NPVOptimistic > a.NPV && a.NPV > a.Sensitivity.NPVPessimistic) {
		t.Errorf("sensitivity band not ordered: %v / %v / %v",
			a.Sensitivity.NPVOptimistic, a.NPV, a.Sensitivity.NPVPessimistic)
	}
}

func TestInvestmentSummary_DiscountsMonthly(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	bundle.Assumptions.DiscountRate = 0.10

	a, err := engine.InvestmentSummary(context.Background(), bundle, models.ComputeTrigger{ProjectID: "plan-1", ForceRecalculation: true})
	if err != nil {
		t.Fatalf("InvestmentSummary: %v", err)
	}

	// The annual 10% converts to the effective monthly rate
	// (1.10)^(1/12) - 1 = 0.0079741404, and twelve flows of 57,000 discount
	// to 57,000 x (1 - 1.10^-1) / 0.0079741404 = 649,827.8063. A plain
	// annual (or rate/12) convention would land elsewhere.
	if math.Abs(a.NPV-649827.8062718491) > 1e-4 {
		t.Errorf("NPV at 10%% = %v, want 649827.8063", a.NPV)
	}
}

func TestAnnualize(t *testing.T) {
	engine := NewEngine(store.NewMemoryRepo(), nil)
	bundle := baselineBundle()
	bundle.Capex = []models.Capex{{
		ID:              "machine",
		Amount:          600000,
		AcquisitionDate: bundle.Project.StartDate,
		LifeMonths:      60,
		Method:          models.DepreciationLinear,
	}}

	rows, err := engine.Compute(context.Background(), bundle, models.ComputeTrigger{ProjectID: "plan-1"})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	annual := Annualize(rows)
	if len(annual) != 1 {
		t.Fatalf("got %d annual rows, want 1", len(annual))
	}
	y := annual[0]
	if y.Year != 1 {
		t.Errorf("year = %d, want 1", y.Year)
	}
	if math.Abs(y.Revenue-1200000) > tolerance {
		t.Errorf("annual revenue = %v, want 1200000", y.Revenue)
	}
	if math.Abs(y.EBITDA-684000) > tolerance {
		t.Errorf("annual EBITDA = %v, want 684000", y.EBITDA)
	}
	// Break-even: (36,000 opex + 120,000 depreciation) / 0.6 gross margin
	// = 260,000 of annual revenue.
	if math.Abs(y.BreakEvenRevenue-260000) > tolerance {
		t.Errorf("break-even revenue = %v, want 260000", y.BreakEvenRevenue)
	}
	if math.Abs(y.EndCash-rows[11].CashBalance) > tolerance {
		t.Errorf("end cash = %v, want %v", y.EndCash, rows[11].CashBalance)
	}
}

func TestValidateBundle_DuplicateSalesRow(t *testing.T) {
	bundle := baselineBundle()
	bundle.Sales = append(bundle.Sales, models.SalesProjection{ProductID: "widget", Year: 1, Month: 1, Volume: 3})
	err := ValidateBundle(bundle)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestValidateBundle_SeasonalityLength(t *testing.T) {
	bundle := baselineBundle()
	bundle.Products[0].Seasonality = []float64{1, 1, 1}
	err := ValidateBundle(bundle)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
