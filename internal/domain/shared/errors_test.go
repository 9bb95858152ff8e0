package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError(CodeNotFound, "Salary record not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestWrapDomainError(t *testing.T) {
	cause := errors.New("duplicate key")
	err := WrapDomainError(CodeConflict, "Salary already exists for this period", cause)

	assert.Equal(t, "Salary already exists for this period", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestValidationErrors(t *testing.T) {
	t.Run("empty is not an error", func(t *testing.T) {
		v := ValidationErrors{}
		assert.False(t, v.HasErrors())
		assert.NoError(t, v.Err())
	})

	t.Run("collects messages per field", func(t *testing.T) {
		v := ValidationErrors{}
		v.Add("year", "Must be at least 2000")
		v.Add("month", "Invalid month")
		v.Add("year", "Must be numeric")

		assert.Len(t, v["year"], 2)
		assert.Equal(t, "validation failed: month: Invalid month; year: Must be at least 2000, Must be numeric", v.Error())
		assert.ErrorIs(t, v.Err(), ErrInvalidInput)
	})

	t.Run("merge", func(t *testing.T) {
		v := NewFieldError("currency", "Unsupported currency")
		v.Merge(NewFieldError("exchange_rate", "Must be greater than 0"))
		assert.Len(t, v, 2)
	})
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)

	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}
