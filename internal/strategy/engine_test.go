package strategy

import (
	"testing"
	"time"

	"RelativeStrength/internal/calculator"
	"RelativeStrength/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSeries builds n consecutive weekday sessions starting 2024-01-02.
func makeSeries(symbol string, n int, price func(i int) float64) *model.PriceSeries {
	bars := make([]model.OHLCV, 0, n)
	day := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	for len(bars) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			p := price(len(bars))
			bars = append(bars, model.OHLCV{Time: day, Open: p, High: p, Low: p, Close: p, Volume: 1000})
		}
		day = day.AddDate(0, 0, 1)
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, Start: bars[0].Time, End: bars[n-1].Time}
}

func linearBase(i int) float64 { return 100 + float64(i) }

func TestEvaluate_OutperformerQualifies(t *testing.T) {
	base := makeSeries("SPY", 120, linearBase)
	a := makeSeries("A", 120, func(i int) float64 { return linearBase(i) * (1 + 0.002*float64(i)) })

	eval, err := Evaluate("A", a, base, DefaultParams())
	require.NoError(t, err)
	assert.True(t, eval.Qualified)
	assert.Equal(t, model.ReasonNone, eval.Reason)
	assert.Greater(t, eval.CRSSlope, 0.0)
	assert.Greater(t, eval.PriceSlope, 0.0)
	assert.Equal(t, 120, eval.Sessions)
	assert.Greater(t, eval.LatestCRS, 1.0)
}

func TestEvaluate_UnderperformerRejectedOnCRS(t *testing.T) {
	base := makeSeries("SPY", 120, linearBase)
	b := makeSeries("B", 120, func(i int) float64 { return linearBase(i) * (1 - 0.002*float64(i)) })

	eval, err := Evaluate("B", b, base, DefaultParams())
	require.NoError(t, err)
	assert.False(t, eval.Qualified)
	assert.Equal(t, model.ReasonCRSNotUptrend, eval.Reason)
	assert.Less(t, eval.CRSSlope, 0.0)
	assert.Zero(t, eval.PriceSlope, "price trend must not be computed after the CRS gate fails")
}

func TestEvaluate_FallingPriceRejected(t *testing.T) {
	// Ticker falls slower than the base: CRS rises while the price itself declines.
	base := makeSeries("SPY", 120, func(i int) float64 { return 200 - float64(i) })
	tk := makeSeries("DEF", 120, func(i int) float64 { return 200 - 0.5*float64(i) })

	eval, err := Evaluate("DEF", tk, base, DefaultParams())
	require.NoError(t, err)
	assert.False(t, eval.Qualified)
	assert.Equal(t, model.ReasonPriceNotUptrend, eval.Reason)
	assert.Greater(t, eval.CRSSlope, 0.0)
	assert.Less(t, eval.PriceSlope, 0.0)
}

func TestEvaluate_ShortHistory(t *testing.T) {
	base := makeSeries("SPY", 60, linearBase)
	a := makeSeries("A", 60, func(i int) float64 { return linearBase(i) * (1 + 0.002*float64(i)) })

	eval, err := Evaluate("A", a, base, DefaultParams())
	require.NoError(t, err)
	assert.False(t, eval.Qualified)
	assert.Equal(t, model.ReasonInsufficientHistory, eval.Reason)
	assert.Contains(t, eval.Detail, calculator.ErrInvalidWindow.Error())
	assert.Greater(t, eval.CRSSlope, 0.0)
}

func TestEvaluate_ShorterThanCRSWindow(t *testing.T) {
	base := makeSeries("SPY", 10, linearBase)
	a := makeSeries("A", 10, linearBase)

	eval, err := Evaluate("A", a, base, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, model.ReasonInsufficientHistory, eval.Reason)
}

func TestEvaluate_CRSWindowEqualsHistory(t *testing.T) {
	// A 20-session SMA over 20 sessions leaves one CRS SMA point, too few for a trend.
	base := makeSeries("SPY", 20, linearBase)
	a := makeSeries("A", 20, func(i int) float64 { return linearBase(i) * (1 + 0.002*float64(i)) })

	eval, err := Evaluate("A", a, base, DefaultParams())
	require.NoError(t, err)
	assert.False(t, eval.Qualified)
	assert.Equal(t, model.ReasonInsufficientHistory, eval.Reason)
	assert.Contains(t, eval.Detail, calculator.ErrInsufficientData.Error())
	assert.Equal(t, 20, eval.Sessions)
	assert.Zero(t, eval.CRSSlope)
}

func TestEvaluate_Misaligned(t *testing.T) {
	base := &model.PriceSeries{Symbol: "SPY", Bars: []model.OHLCV{{Close: 1}, {Close: 2}, {Close: 3}}}
	tk := &model.PriceSeries{Symbol: "X", Bars: []model.OHLCV{{Close: 1}, {Close: 2}}}

	eval, err := Evaluate("X", tk, base, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, model.ReasonMisaligned, eval.Reason)
	assert.NotEmpty(t, eval.Detail)
}

func TestEvaluate_InvalidParamsIsFatal(t *testing.T) {
	base := makeSeries("SPY", 120, linearBase)
	for _, p := range []Params{
		{CRSSMALength: 0, UptrendSMALength: 100},
		{CRSSMALength: 20, UptrendSMALength: -1},
		{CRSSMALength: 20, UptrendSMALength: 100, CRSTrendLookback: 1},
	} {
		_, err := Evaluate("SPY", base, base, p)
		assert.ErrorIs(t, err, calculator.ErrInvalidWindow, "%+v", p)
	}
}

func TestEvaluate_ZeroBaseCloseIsFatal(t *testing.T) {
	base := makeSeries("SPY", 120, func(i int) float64 {
		if i == 50 {
			return 0
		}
		return linearBase(i)
	})
	a := makeSeries("A", 120, linearBase)

	_, err := Evaluate("A", a, base, DefaultParams())
	assert.ErrorIs(t, err, calculator.ErrDivisionByZero)
}

func TestEvaluate_CRSTrendLookback(t *testing.T) {
	// CRS falls for most of the history and turns up over the last stretch.
	base := makeSeries("SPY", 150, linearBase)
	v := makeSeries("V", 150, func(i int) float64 {
		f := 1 - 0.003*float64(i)
		if i > 110 {
			f = 1 - 0.003*110 + 0.01*float64(i-110)
		}
		return linearBase(i) * f
	})

	full, err := Evaluate("V", v, base, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, model.ReasonCRSNotUptrend, full.Reason)

	p := DefaultParams()
	p.CRSTrendLookback = 10
	recent, err := Evaluate("V", v, base, p)
	require.NoError(t, err)
	assert.Greater(t, recent.CRSSlope, 0.0)
}

func TestEvaluate_IsPure(t *testing.T) {
	base := makeSeries("SPY", 120, linearBase)
	a := makeSeries("A", 120, func(i int) float64 { return linearBase(i) * (1 + 0.001*float64(i)) })
	before := a.Closes()

	first, err := Evaluate("A", a, base, DefaultParams())
	require.NoError(t, err)
	second, err := Evaluate("A", a, base, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, a.Closes())
}
