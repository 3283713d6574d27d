package wage

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

func TestSplitDefaultPolicy(t *testing.T) {
	t.Run("100.00 splits 85/5/5/5", func(t *testing.T) {
		b := Split(domain.MustParseAmount("100.00"))
		assert.Equal(t, "85.000000", b.Worker.String())
		assert.Equal(t, "5.000000", b.Insurance.String())
		assert.Equal(t, "5.000000", b.Savings.String())
		assert.Equal(t, "5.000000", b.Protocol.String())
	})

	t.Run("protocol absorbs the residual", func(t *testing.T) {
		b := Split(domain.AmountFromMicros(7))
		assert.Equal(t, int64(5), b.Worker.Micros())
		assert.Equal(t, int64(0), b.Insurance.Micros())
		assert.Equal(t, int64(0), b.Savings.Micros())
		assert.Equal(t, int64(2), b.Protocol.Micros())
	})

	t.Run("zero wage splits to zero", func(t *testing.T) {
		b := Split(domain.Zero)
		assert.True(t, b.Total().IsZero())
	})
}

func TestSplitSumsExactly(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(params)

	calc, err := NewCalculator(Policy{WorkerBP: 7333, InsuranceBP: 1111, SavingsBP: 1001, ProtocolBP: 555})
	require.NoError(t, err)

	properties.Property("default policy shares sum to the wage", prop.ForAll(
		func(micros int64) bool {
			w := domain.AmountFromMicros(micros)
			return Split(w).Total().Cmp(w) == 0
		},
		gen.Int64Range(0, 1<<62),
	))

	properties.Property("uneven policy shares sum to the wage", prop.ForAll(
		func(micros int64) bool {
			w := domain.AmountFromMicros(micros)
			b := calc.Split(w)
			return b.Total().Cmp(w) == 0 && b.Protocol.Micros() >= 0
		},
		gen.Int64Range(0, 1<<62),
	))

	properties.TestingRun(t)
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy.Validate())

	_, err := NewCalculator(Policy{WorkerBP: 9000, InsuranceBP: 500, SavingsBP: 500, ProtocolBP: 500})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = NewCalculator(Policy{WorkerBP: 11000, InsuranceBP: -500, SavingsBP: -500, ProtocolBP: 0})
	require.Error(t, err)
}
