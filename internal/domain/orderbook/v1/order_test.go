package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	order := NewOrder(Buy, 30, 10)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, Buy, order.Side)
	assert.Equal(t, int64(30), order.Price)
	assert.Equal(t, int64(10), order.Quantity)
	assert.Equal(t, int64(10), order.Remaining)
	assert.Equal(t, StatusActive, order.Status)
}

func TestNewOrder_UniqueIDs(t *testing.T) {
	a := NewOrder(Buy, 10, 1)
	b := NewOrder(Buy, 10, 1)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseSide(t *testing.T) {
	testCases := []struct {
		name      string
		token     string
		expected  Side
		expectErr bool
	}{
		{name: "buy token", token: "buy", expected: Buy},
		{name: "sell token", token: "sell", expected: Sell},
		{name: "unknown token", token: "hold", expectErr: true},
		{name: "empty token", token: "", expectErr: true},
		{name: "uppercase token rejected", token: "BUY", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			side, err := ParseSide(tc.token)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, side)
		})
	}
}

func TestOrder_Reduce(t *testing.T) {
	t.Run("partial reduction", func(t *testing.T) {
		order := NewOrder(Sell, 100, 10)

		err := order.Reduce(4)

		require.NoError(t, err)
		assert.Equal(t, int64(6), order.Remaining)
		assert.Equal(t, StatusPartiallyFilled, order.Status)
	})

	t.Run("reduction to zero fills the order", func(t *testing.T) {
		order := NewOrder(Sell, 100, 10)

		require.NoError(t, order.Reduce(10))

		assert.Equal(t, int64(0), order.Remaining)
		assert.Equal(t, StatusFilled, order.Status)
	})

	t.Run("reduction beyond remaining", func(t *testing.T) {
		order := NewOrder(Sell, 100, 10)

		err := order.Reduce(11)

		assert.ErrorIs(t, err, ErrInvalidReduction)
		assert.Equal(t, int64(10), order.Remaining)
		assert.Equal(t, StatusActive, order.Status)
	})

	t.Run("zero reduction", func(t *testing.T) {
		order := NewOrder(Buy, 100, 10)

		assert.ErrorIs(t, order.Reduce(0), ErrInvalidReduction)
	})

	t.Run("reduce on filled order", func(t *testing.T) {
		order := NewOrder(Buy, 100, 5)
		require.NoError(t, order.Reduce(5))

		assert.ErrorIs(t, order.Reduce(1), ErrAlreadyTerminal)
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancel active order", func(t *testing.T) {
		order := NewOrder(Buy, 100, 10)

		require.NoError(t, order.Cancel())
		assert.Equal(t, StatusCancelled, order.Status)
	})

	t.Run("cancel partially filled order", func(t *testing.T) {
		order := NewOrder(Buy, 100, 10)
		require.NoError(t, order.Reduce(3))

		require.NoError(t, order.Cancel())
		assert.Equal(t, StatusCancelled, order.Status)
		assert.Equal(t, int64(7), order.Remaining)
	})

	t.Run("cancel filled order", func(t *testing.T) {
		order := NewOrder(Buy, 100, 10)
		require.NoError(t, order.Reduce(10))

		assert.ErrorIs(t, order.Cancel(), ErrAlreadyTerminal)
		assert.Equal(t, StatusFilled, order.Status)
	})

	t.Run("cancel cancelled order", func(t *testing.T) {
		order := NewOrder(Buy, 100, 10)
		require.NoError(t, order.Cancel())

		assert.ErrorIs(t, order.Cancel(), ErrAlreadyTerminal)
	})
}

// Status transitions only ever move forward: Active -> PartiallyFilled ->
// Filled, or out to Cancelled from a non-terminal state.
func TestOrder_TerminalMonotonicity(t *testing.T) {
	order := NewOrder(Sell, 50, 3)

	require.NoError(t, order.Reduce(1))
	assert.Equal(t, StatusPartiallyFilled, order.Status)

	require.NoError(t, order.Reduce(1))
	assert.Equal(t, StatusPartiallyFilled, order.Status)

	require.NoError(t, order.Reduce(1))
	assert.Equal(t, StatusFilled, order.Status)

	assert.ErrorIs(t, order.Cancel(), ErrAlreadyTerminal)
	assert.ErrorIs(t, order.Reduce(1), ErrAlreadyTerminal)
	assert.Equal(t, StatusFilled, order.Status)
}
