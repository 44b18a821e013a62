package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVector(t *testing.T) {
	t.Run("fixed eight decimal places", func(t *testing.T) {
		got := FormatVector([]float32{0.1, -0.25, 1})

		assert.Equal(t, "[0.10000000, -0.25000000, 1.00000000]", got)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Equal(t, "[]", FormatVector(nil))
	})

	t.Run("single component", func(t *testing.T) {
		assert.Equal(t, "[0.50000000]", FormatVector([]float32{0.5}))
	})
}
