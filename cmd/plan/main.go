// Command plan runs one assumption bundle through the full pipeline
// offline and prints the monthly ledger plus the investment summary.
// Bundles are HJSON or JSON files; see examples/demo_plan.hjson.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"bizplan_engine/pkg/core/consolidation"
	"bizplan_engine/pkg/core/store"
	"bizplan_engine/pkg/core/utils"
	"bizplan_engine/pkg/models"
)

func main() {
	godotenv.Load()

	bundlePath := flag.String("bundle", "", "path to a .hjson or .json assumption bundle")
	force := flag.Bool("force", true, "force recomputation")
	annual := flag.Bool("annual", false, "print annual summary instead of monthly rows")
	flag.Parse()

	if *bundlePath == "" {
		fmt.Println("usage: plan -bundle <file.hjson> [-annual]")
		os.Exit(2)
	}

	var bundle models.AssumptionBundle
	if err := utils.LoadBundleFile(*bundlePath, &bundle); err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	if bundle.Project.ID == "" {
		bundle.Project.ID = uuid.New().String()
	}

	engine := consolidation.NewEngine(store.NewMemoryRepo(), nil)
	trigger := models.ComputeTrigger{
		ProjectID:          bundle.Project.ID,
		ForceRecalculation: *force,
	}
	if bundle.Scenario != nil {
		id := bundle.Scenario.ID
		trigger.ScenarioID = &id
	}

	ctx := context.Background()
	rows, err := engine.Compute(ctx, bundle, trigger)
	if err != nil {
		fmt.Printf("[FATAL] computation failed: %v\n", err)
		os.Exit(1)
	}

	if *annual {
		printAnnual(consolidation.Annualize(rows))
	} else {
		printMonthly(rows)
	}

	analysis, err := engine.InvestmentSummary(ctx, bundle, trigger)
	if err != nil {
		fmt.Printf("[FATAL] analysis failed: %v\n", err)
		os.Exit(1)
	}
	printAnalysis(analysis)
}

func printMonthly(rows []models.FinancialOutput) {
	fmt.Printf("%-8s %12s %12s %12s %12s %12s %12s %12s\n",
		"Period", "Revenue", "EBITDA", "NetIncome", "NetCF", "Cash", "BFR", "DSCR")
	for _, r := range rows {
		fmt.Printf("Y%dM%-4d %12.2f %12.2f %12.2f %12.2f %12.2f %12.2f %12.2f\n",
			r.Year, r.Month, r.Revenue, r.EBITDA, r.NetIncome, r.NetCashFlow, r.CashBalance, r.BFR, r.DSCR)
	}
}

func printAnnual(years []consolidation.AnnualSummary) {
	fmt.Printf("%-6s %14s %14s %14s %14s %14s\n",
		"Year", "Revenue", "EBITDA", "NetIncome", "EndCash", "BreakEven")
	for _, y := range years {
		fmt.Printf("%-6d %14.2f %14.2f %14.2f %14.2f %14.2f\n",
			y.Year, y.Revenue, y.EBITDA, y.NetIncome, y.EndCash, y.BreakEvenRevenue)
	}
}

func printAnalysis(a *models.InvestmentAnalysis) {
	fmt.Println("\nInvestment analysis")
	fmt.Printf("  NPV @ %.2f%%: %.2f\n", a.DiscountRate*100, a.NPV)
	if a.IRR.Defined {
		fmt.Printf("  IRR: %.2f%%\n", a.IRR.Value*100)
	} else {
		fmt.Printf("  IRR: undefined (%s)\n", a.IRR.Reason)
	}
	if a.Payback != nil {
		fmt.Printf("  DRCI: %dy %dm %dd\n", a.Payback.Years, a.Payback.Months, a.Payback.Days)
	} else {
		fmt.Printf("  DRCI: undefined (%s)\n", a.DRCI.Reason)
	}
	fmt.Printf("  Profitability index: %.3f\n", a.ProfitabilityIndex)
	fmt.Printf("  NPV optimistic/pessimistic: %.2f / %.2f\n",
		a.Sensitivity.NPVOptimistic, a.Sensitivity.NPVPessimistic)
}
