package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderSide(t *testing.T) {
	side, err := ParseOrderSide("buy")
	require.NoError(t, err)
	assert.Equal(t, OrderSideBuy, side)

	side, err = ParseOrderSide("SELL")
	require.NoError(t, err)
	assert.Equal(t, OrderSideSell, side)

	_, err = ParseOrderSide("hold")
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, err = ParseOrderSide("")
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestOrderSideOpposite(t *testing.T) {
	assert.Equal(t, OrderSideSell, OrderSideBuy.Opposite())
	assert.Equal(t, OrderSideBuy, OrderSideSell.Opposite())
}

func TestDefaultFillModes(t *testing.T) {
	modes := DefaultFillModes()
	require.Len(t, modes, 3)
	assert.Equal(t, []FillMode{FillModeReturn, FillModeIOC, FillModeFOK}, modes)
}

func TestParseFillModes(t *testing.T) {
	modes, err := ParseFillModes(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFillModes(), modes)

	modes, err = ParseFillModes([]string{"fok", "ioc"})
	require.NoError(t, err)
	assert.Equal(t, []FillMode{FillModeFOK, FillModeIOC}, modes)

	_, err = ParseFillModes([]string{"RETURN", "AON"})
	assert.ErrorIs(t, err, ErrInvalidFillMode)
}

func TestTradeRequestValidate(t *testing.T) {
	valid := TradeRequest{
		Symbol: "EURUSD",
		Side:   OrderSideBuy,
		Volume: decimal.NewFromFloat(0.1),
	}
	assert.NoError(t, valid.Validate())

	noSymbol := valid
	noSymbol.Symbol = "  "
	assert.ErrorIs(t, noSymbol.Validate(), ErrSymbolRequired)

	badSide := valid
	badSide.Side = "HOLD"
	assert.ErrorIs(t, badSide.Validate(), ErrInvalidSide)

	zeroVolume := valid
	zeroVolume.Volume = decimal.Zero
	assert.ErrorIs(t, zeroVolume.Validate(), ErrInvalidVolume)

	negVolume := valid
	negVolume.Volume = decimal.NewFromFloat(-0.5)
	assert.ErrorIs(t, negVolume.Validate(), ErrInvalidVolume)
}

func TestQuotePriceFor(t *testing.T) {
	quote := Quote{
		Symbol: "EURUSD",
		Bid:    decimal.NewFromFloat(1.1000),
		Ask:    decimal.NewFromFloat(1.1002),
	}

	assert.True(t, quote.PriceFor(OrderSideBuy).Equal(quote.Ask))
	assert.True(t, quote.PriceFor(OrderSideSell).Equal(quote.Bid))
	assert.True(t, quote.Spread().Equal(decimal.NewFromFloat(0.0002)))
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("")
	require.NoError(t, err)
	assert.Equal(t, TimeframeM5, tf)

	tf, err = ParseTimeframe("1h")
	require.NoError(t, err)
	assert.Equal(t, TimeframeH1, tf)

	_, err = ParseTimeframe("2h")
	assert.ErrorIs(t, err, ErrInvalidTimeframe)
}
