// Package loan derives monthly amortization schedules from Loan records.
// Like depreciation schedules, these are pure functions of the source
// record and are recomputed on demand.
package loan

import (
	"errors"
	"fmt"
	"math"

	"bizplan_engine/pkg/models"
)

// ErrInvalidLoanTerms rejects a loan before any schedule generation.
var ErrInvalidLoanTerms = errors.New("invalid loan terms")

// Entry is one month of an amortization schedule. Period is 0-based from
// disbursement. Interest is the interest accrued for the period whether it
// is paid or capitalized; Payment is the cash actually due.
type Entry struct {
	Period           int     `json:"period"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
	Balloon          float64 `json:"balloon"`
	Payment          float64 `json:"payment"`
	RemainingBalance float64 `json:"remaining_balance"`
	Capitalized      bool    `json:"capitalized,omitempty"`
}

// Validate checks the loan terms without generating a schedule, so a bad
// loan can be rejected with the rest of the input before any computation.
func Validate(l models.Loan) error {
	if l.AnnualRate < 0 || l.TermMonths <= 0 {
		return fmt.Errorf("%w: rate=%.4f term=%d", ErrInvalidLoanTerms, l.AnnualRate, l.TermMonths)
	}
	if g := graceEnd(l); g >= l.TermMonths {
		return fmt.Errorf("%w: grace %d months exceeds term %d", ErrInvalidLoanTerms, g, l.TermMonths)
	}
	return nil
}

// graceEnd is the first period at which amortization starts: both grace
// windows must have elapsed.
func graceEnd(l models.Loan) int {
	if l.GraceInterestMonths > l.GracePrincipalMonths {
		return l.GraceInterestMonths
	}
	return l.GracePrincipalMonths
}

// Schedule builds the full monthly schedule for one loan.
//
// Interest accrues at rate/12 on the outstanding balance. During an
// interest grace window accrued interest capitalizes into the balance;
// during a principal grace window only interest is due. Outside grace a
// standard annuity amortizes the balance net of the balloon fraction over
// the remaining term; the balloon is due with the final payment.
func Schedule(l models.Loan) ([]Entry, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}

	r := l.AnnualRate / 12.0
	balance := l.Principal
	balloon := l.Principal * l.BalloonPct

	payStart := graceEnd(l)

	entries := make([]Entry, 0, l.TermMonths)
	annuity := 0.0

	for m := 0; m < l.TermMonths; m++ {
		interest := balance * r
		e := Entry{Period: m, Interest: interest}

		switch {
		case m < l.GraceInterestMonths:
			// Accrued interest is capitalized, nothing is paid.
			balance += interest
			e.Capitalized = true

		case m < payStart:
			// Principal grace: interest only.
			e.Payment = interest

		default:
			if annuity == 0 {
				annuity = annuityPayment(balance-balloon, r, l.TermMonths-m)
			}
			principal := annuity - interest
			if m == l.TermMonths-1 {
				// Final period clears the remaining balance exactly and
				// settles the balloon.
				principal = balance - balloon
				e.Balloon = balloon
			}
			e.Principal = principal
			e.Payment = principal + interest + e.Balloon
			balance -= principal + e.Balloon
		}

		e.RemainingBalance = balance
		entries = append(entries, e)
	}

	return entries, nil
}

// annuityPayment returns the constant payment fully amortizing principal
// over n months at monthly rate r.
func annuityPayment(principal, r float64, n int) float64 {
	if n <= 0 {
		return principal
	}
	if r == 0 {
		return principal / float64(n)
	}
	return principal * r / (1.0 - math.Pow(1.0+r, float64(-n)))
}

// UpfrontCost is the one-time disbursement outflow for fees and insurance,
// kept separate from the amortization schedule.
func UpfrontCost(l models.Loan) float64 {
	return l.Principal * (l.FeesPct + l.InsurancePct)
}
