package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEuro(t *testing.T) {
	assert.Equal(t, "€0", Euro(0))
	assert.Equal(t, "€500", Euro(500))
	assert.Equal(t, "€36,000", Euro(36000))
	assert.Equal(t, "€415,000", Euro(415000))
	assert.Equal(t, "€1,234,568", Euro(1234567.89))
}

func TestEuroMonthly(t *testing.T) {
	assert.Equal(t, "€1,000/month", EuroMonthly(1000))
}
