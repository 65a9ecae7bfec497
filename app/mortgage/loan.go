package mortgage

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	validate = validator.New()
	printer  = message.NewPrinter(language.English)

	ErrNoPayments = errors.New("loan term is shorter than one month")
)

var periodsPerYear = map[string]float64{
	"daily":    365,
	"monthly":  12,
	"annually": 1,
}

var unitsPerYear = map[string]float64{
	"days":   365,
	"months": 12,
	"years":  1,
}

// Loan doubles as the structured answer the LLM fills in; the description
// tags end up in the JSON schema.
type Loan struct {
	Principal  float64 `json:"principal" validate:"gt=0" description:"The original sum of money borrowed."`
	Interest   float64 `json:"interest" validate:"gte=0,lte=1" description:"The annual interest rate of the loan. Interest rate must be between zero and one."`
	Term       float64 `json:"term" validate:"gt=0" description:"The duration of the loan."`
	TermUnit   string  `json:"term_unit" validate:"oneof=days months years" enum:"days,months,years" description:"The unit of time for the loan term."`
	Compounded string  `json:"compounded" validate:"oneof=daily monthly annually" enum:"daily,monthly,annually" description:"The frequency at which interest is compounded."`
	Currency   string  `json:"currency" validate:"required" description:"The currency symbol used in the loan summary."`
}

type Summary struct {
	Loan                Loan
	Months              int
	MonthlyPayment      float64
	APR                 float64
	APY                 float64
	TotalPrincipal      float64
	TotalInterest       float64
	TotalPaid           float64
	InterestToPrincipal float64
	YearsToPay          float64
}

func (l Loan) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid loan: %w", err)
	}
	return nil
}

// Calculate amortizes the loan with equal monthly payments. The nominal rate
// is converted to an effective monthly rate for the given compounding.
func (l Loan) Calculate() (*Summary, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	years := l.Term / unitsPerYear[l.TermUnit]
	months := int(math.Round(years * 12))
	if months < 1 {
		return nil, ErrNoPayments
	}

	n := periodsPerYear[l.Compounded]
	periodic := l.Interest / n
	monthly := math.Pow(1+periodic, n/12) - 1

	payment := l.Principal / float64(months)
	if monthly > 0 {
		payment = l.Principal * monthly / (1 - math.Pow(1+monthly, -float64(months)))
	}
	payment = round(payment, 2)

	totalPaid := round(payment*float64(months), 2)
	totalInterest := round(totalPaid-l.Principal, 2)

	return &Summary{
		Loan:                l,
		Months:              months,
		MonthlyPayment:      payment,
		APR:                 round(l.Interest*100, 2),
		APY:                 round((math.Pow(1+periodic, n)-1)*100, 2),
		TotalPrincipal:      round(l.Principal, 2),
		TotalInterest:       totalInterest,
		TotalPaid:           totalPaid,
		InterestToPrincipal: round(totalInterest/l.Principal*100, 1),
		YearsToPay:          round(float64(months)/12, 1),
	}, nil
}

func (s Summary) String() string {
	cur := s.Loan.Currency
	lines := []string{
		printer.Sprintf("Original Balance: %s%11.2f", cur, s.TotalPrincipal),
		printer.Sprintf("Interest Rate: %11.2f %%", s.Loan.Interest*100),
		printer.Sprintf("APY: %11.2f %%", s.APY),
		printer.Sprintf("APR: %11.2f %%", s.APR),
		printer.Sprintf("Term: %11v %s", s.Loan.Term, s.Loan.TermUnit),
		printer.Sprintf("Monthly Payment: %s%11.2f", cur, s.MonthlyPayment),
		"",
		printer.Sprintf("Total principal payments: %s%11.2f", cur, s.TotalPrincipal),
		printer.Sprintf("Total interest payments: %s%11.2f", cur, s.TotalInterest),
		printer.Sprintf("Total payments: %s%11.2f", cur, s.TotalPaid),
		printer.Sprintf("Interest to principal: %11.1f %%", s.InterestToPrincipal),
		printer.Sprintf("Years to pay: %11.1f", s.YearsToPay),
	}
	return strings.Join(lines, "\n")
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
