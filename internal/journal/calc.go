package journal

import (
	"math"

	"github.com/shopspring/decimal"
)

// TradeInput carries the raw prices and sizing of a single logged trade.
// PriceExit is nil while the trade is still open; TakeProfit holds the raw
// partial take-profit text ("<size>@<price>,<price>,...") and may be empty.
type TradeInput struct {
	PriceEntry float64
	PriceStop  float64
	PriceExit  *float64
	TakeProfit string
	Contracts  float64
	Multiplier float64
}

// Settings mirrors the trader configuration the replay and calculator need.
type Settings struct {
	AccountStart        float64
	BaseRiskPct         float64
	RiskMultiplier      float64
	StepsizeUp          float64
	GamificationEnabled bool
}

// Fields is the derived snapshot persisted with each trade. Nil pointers mean
// the value is undefined (open trade), never an error.
type Fields struct {
	TradeR         *float64
	PnlUSD         *float64
	UsdAtRisk      float64
	PlannedRiskUSD float64
	RiskRFactor    float64
	NettR          *float64
	EquityBefore   float64
	EquityAfter    *float64
	RiskPct        float64
	NormalRiskPct  float64
	PowerNorm      float64
}

// IsLong reports the inferred trade direction. A stop at or above the entry
// classifies as short; direction is never supplied explicitly.
func IsLong(entry, stop float64) bool {
	return stop < entry
}

// Calculate derives the full field snapshot for one trade from its raw inputs,
// the equity immediately before the trade, the risk percentage in effect and
// the trader's baseline risk percentage. It is a pure function: missing
// optional inputs propagate as nil, zero denominators resolve to the defined
// sentinels, and rounding is applied exactly once at the end.
func Calculate(in TradeInput, equityBefore, currentRiskPct, baseRiskPct float64) Fields {
	plannedRisk := equityBefore * currentRiskPct
	usdAtRisk := math.Abs(in.PriceEntry-in.PriceStop) * in.Contracts * in.Multiplier

	riskRFactor := 1.0
	if plannedRisk > 0 {
		riskRFactor = usdAtRisk / plannedRisk
	}

	tradeR, pnl := resolveOutcome(in)

	var nettR *float64
	if pnl != nil && plannedRisk > 0 {
		v := *pnl / plannedRisk
		nettR = &v
	}

	var equityAfter *float64
	if pnl != nil {
		v := equityBefore + *pnl
		equityAfter = &v
	}

	powerNorm := 1.0
	if baseRiskPct > 0 {
		powerNorm = currentRiskPct / baseRiskPct
	}

	return Fields{
		TradeR:         roundPtr(tradeR, 4),
		PnlUSD:         roundPtr(pnl, 2),
		UsdAtRisk:      round(usdAtRisk, 2),
		PlannedRiskUSD: round(plannedRisk, 2),
		RiskRFactor:    round(riskRFactor, 2),
		NettR:          roundPtr(nettR, 4),
		EquityBefore:   round(equityBefore, 2),
		EquityAfter:    roundPtr(equityAfter, 2),
		RiskPct:        currentRiskPct,
		NormalRiskPct:  baseRiskPct,
		PowerNorm:      round(powerNorm, 4),
	}
}

// resolveOutcome produces the unrounded trade R-multiple and currency PnL, or
// nils while no exit information exists. Partial take-profits with known sizes
// win over the single exit price; a residual position size is blended at the
// single exit price when one is present.
func resolveOutcome(in TradeInput) (tradeR, pnl *float64) {
	exit, size, ok := effectiveExit(in)
	if !ok {
		return nil, nil
	}

	dir := 1.0
	if !IsLong(in.PriceEntry, in.PriceStop) {
		dir = -1
	}

	riskPerUnit := math.Abs(in.PriceEntry - in.PriceStop)
	r := 0.0
	if riskPerUnit > 0 {
		r = dir * (exit - in.PriceEntry) / riskPerUnit
	}

	p := dir * (exit - in.PriceEntry) * size * in.Multiplier
	return &r, &p
}

// effectiveExit resolves the exit model for the trade: the size-weighted
// average over sized take-profit tranches (plus the remaining size at the
// single exit price, if any), or the single exit price alone. The returned
// size is the position size the outcome applies to.
func effectiveExit(in TradeInput) (price, size float64, ok bool) {
	weighted := 0.0
	closed := 0.0
	for _, tr := range ParseTakeProfits(in.TakeProfit) {
		if tr.Size <= 0 {
			// price-only tranche, weight unknown
			continue
		}
		weighted += tr.Size * tr.Price
		closed += tr.Size
	}

	if closed <= 0 {
		if in.PriceExit == nil {
			return 0, 0, false
		}
		return *in.PriceExit, in.Contracts, true
	}

	if closed < in.Contracts && in.PriceExit != nil {
		rest := in.Contracts - closed
		weighted += rest * *in.PriceExit
		closed = in.Contracts
	}
	return weighted / closed, closed, true
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, places)
	return &r
}
