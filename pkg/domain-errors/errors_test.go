package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeInternal, "save failed")
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.True(t, HasCode(err, CodeInternal))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeNotEligible, "needs 5 check-ins"))
		assert.True(t, Is(err, CodeNotEligible))
		assert.Equal(t, CodeNotEligible, CodeOf(err))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("classification", func(t *testing.T) {
		assert.True(t, IsValidation(New(CodeInvalidIdentifier, "x")))
		assert.True(t, IsState(New(CodeAlreadyReleased, "x")))
		assert.False(t, IsState(New(CodeInvalidCoordinate, "x")))
	})
}
