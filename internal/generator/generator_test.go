package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapelux/internal/model"
	"vapelux/internal/validator"
)

func TestNewOrder_Valid(t *testing.T) {
	for i := 0; i < 20; i++ {
		order := NewOrder()
		require.NoError(t, validator.ValidateStruct(&order))
	}
}

func TestNewOrder_TotalsConsistent(t *testing.T) {
	for i := 0; i < 20; i++ {
		order := NewOrder()

		goods := 0
		for _, line := range order.Items {
			goods += line.Price * line.Quantity
		}
		assert.Equal(t, goods, order.GoodsTotal)
		assert.Equal(t, order.GoodsTotal+order.DeliveryFee, order.Total)

		if order.DeliveryType == model.DeliveryPickup {
			assert.Zero(t, order.DeliveryFee)
		}
	}
}

func TestNewOrder_UniqueUIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		order := NewOrder()
		assert.False(t, seen[order.OrderUID])
		seen[order.OrderUID] = true
	}
}
