// Package wage partitions a weekly wage into its four shares.
package wage

import (
	"fmt"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

// TotalBasisPoints is 100% expressed in basis points.
const TotalBasisPoints = 10_000

// Policy expresses each share in basis points. Protocol receives whatever
// integer division leaves behind, so ProtocolBP only documents the nominal rate.
type Policy struct {
	WorkerBP    int64 `json:"worker_bp" yaml:"worker_bp"`
	InsuranceBP int64 `json:"insurance_bp" yaml:"insurance_bp"`
	SavingsBP   int64 `json:"savings_bp" yaml:"savings_bp"`
	ProtocolBP  int64 `json:"protocol_bp" yaml:"protocol_bp"`
}

// DefaultPolicy is 85/5/5/5.
var DefaultPolicy = Policy{WorkerBP: 8500, InsuranceBP: 500, SavingsBP: 500, ProtocolBP: 500}

func init() {
	if err := DefaultPolicy.Validate(); err != nil {
		panic(err)
	}
}

// Validate requires every share to be non-negative and the total to be 100%.
func (p Policy) Validate() error {
	for name, bp := range map[string]int64{
		"worker":    p.WorkerBP,
		"insurance": p.InsuranceBP,
		"savings":   p.SavingsBP,
		"protocol":  p.ProtocolBP,
	} {
		if bp < 0 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s share must not be negative", name))
		}
	}
	if sum := p.WorkerBP + p.InsuranceBP + p.SavingsBP + p.ProtocolBP; sum != TotalBasisPoints {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("wage policy shares sum to %d basis points, want %d", sum, TotalBasisPoints))
	}
	return nil
}

// Breakdown is the derived partition of one weekly wage.
type Breakdown struct {
	Worker    domain.Amount `json:"worker"`
	Insurance domain.Amount `json:"insurance"`
	Savings   domain.Amount `json:"savings"`
	Protocol  domain.Amount `json:"protocol"`
}

// Total sums the four shares.
func (b Breakdown) Total() domain.Amount {
	return b.Worker.Add(b.Insurance).Add(b.Savings).Add(b.Protocol)
}

// Calculator is a validated policy.
type Calculator struct {
	policy Policy
}

// NewCalculator fails when the policy does not sum to 100%.
func NewCalculator(p Policy) (*Calculator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{policy: p}, nil
}

func (c *Calculator) Policy() Policy { return c.policy }

// Split partitions weeklyWage. The four shares always sum exactly to the input.
func (c *Calculator) Split(weeklyWage domain.Amount) Breakdown {
	total := weeklyWage.Micros()
	worker := share(total, c.policy.WorkerBP)
	insurance := share(total, c.policy.InsuranceBP)
	savings := share(total, c.policy.SavingsBP)
	return Breakdown{
		Worker:    domain.AmountFromMicros(worker),
		Insurance: domain.AmountFromMicros(insurance),
		Savings:   domain.AmountFromMicros(savings),
		Protocol:  domain.AmountFromMicros(total - worker - insurance - savings),
	}
}

// Split applies DefaultPolicy.
func Split(weeklyWage domain.Amount) Breakdown {
	return defaultCalculator.Split(weeklyWage)
}

var defaultCalculator = &Calculator{policy: DefaultPolicy}

// share floors total*bp/10000 without overflowing for any int64 total.
func share(total, bp int64) int64 {
	q, r := total/TotalBasisPoints, total%TotalBasisPoints
	return q*bp + r*bp/TotalBasisPoints
}
