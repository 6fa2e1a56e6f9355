package journal

import "math"

// Outcome is the slice of a stored trade the aggregator needs. Open trades
// carry a nil NettR and are excluded from every statistic.
type Outcome struct {
	NettR   *float64
	PnlUSD  *float64
	MaxWinR *float64
}

// Summary holds per-trader performance statistics over closed trades. With no
// closed trades every field is zero.
type Summary struct {
	TotalTrades int     `json:"totalTrades"`
	WinRate     float64 `json:"winRate"`
	AvgRWin     float64 `json:"avgRWin"`
	AvgRLoss    float64 `json:"avgRLoss"`
	EV          float64 `json:"ev"`
	Stdev       float64 `json:"stdev"`
	Sharpe      float64 `json:"sharpe"`
	TotalPnl    float64 `json:"totalPnl"`
	BestTrade   float64 `json:"bestTrade"`
	WorstTrade  float64 `json:"worstTrade"`
	AvgMaxWinR  float64 `json:"avgMaxWinR"`
}

// Summarize aggregates closed-trade outcomes into summary statistics.
// Outcomes at exactly 0 R count as losses. The Sharpe figure is the plain
// expectancy/volatility ratio with a population standard deviation, not an
// annualized Sharpe ratio.
func Summarize(trades []Outcome) Summary {
	var rs []float64
	totalPnl := 0.0
	var maxWinSum float64
	maxWinCount := 0
	for _, t := range trades {
		if t.NettR == nil {
			continue
		}
		rs = append(rs, *t.NettR)
		if t.PnlUSD != nil {
			totalPnl += *t.PnlUSD
		}
		if t.MaxWinR != nil {
			maxWinSum += *t.MaxWinR
			maxWinCount++
		}
	}
	if len(rs) == 0 {
		return Summary{}
	}

	var winSum, lossSum, sum float64
	wins, losses := 0, 0
	best, worst := rs[0], rs[0]
	for _, r := range rs {
		sum += r
		if r > 0 {
			winSum += r
			wins++
		} else {
			lossSum += r
			losses++
		}
		best = math.Max(best, r)
		worst = math.Min(worst, r)
	}

	n := float64(len(rs))
	ev := sum / n

	variance := 0.0
	for _, r := range rs {
		variance += (r - ev) * (r - ev)
	}
	variance /= n
	stdev := math.Sqrt(variance)

	sharpe := 0.0
	if stdev > 0 {
		sharpe = ev / stdev
	}

	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 0.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	avgMaxWin := 0.0
	if maxWinCount > 0 {
		avgMaxWin = maxWinSum / float64(maxWinCount)
	}

	return Summary{
		TotalTrades: len(rs),
		WinRate:     round(float64(wins)/n, 4),
		AvgRWin:     round(avgWin, 2),
		AvgRLoss:    round(avgLoss, 2),
		EV:          round(ev, 2),
		Stdev:       round(stdev, 2),
		Sharpe:      round(sharpe, 2),
		TotalPnl:    round(totalPnl, 2),
		BestTrade:   round(best, 2),
		WorstTrade:  round(worst, 2),
		AvgMaxWinR:  round(avgMaxWin, 2),
	}
}
