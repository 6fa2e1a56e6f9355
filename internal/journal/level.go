package journal

import "math"

// minLevel is the floor for consecutive level-downs. Levels above zero are
// unbounded.
const minLevel = -3

// LevelState is the risk-escalation state after replaying a sequence of
// realized nett R outcomes. CurrentRiskPct is the percentage that applies to
// the trader's next trade.
type LevelState struct {
	Level          int     `json:"level"`
	CumRSinceLevel float64 `json:"cumRSinceLevel"`
	RToNextLevel   float64 `json:"rToNextLevel"`
	CurrentRiskPct float64 `json:"currentRiskPct"`
}

// RiskPctForLevel scales the baseline risk percentage by the per-level
// multiplier. Levels at or below zero stay on the baseline: the ladder only
// ever sizes risk upward.
func RiskPctForLevel(baseRiskPct, riskMultiplier float64, level int) float64 {
	if level <= 0 {
		return baseRiskPct
	}
	return baseRiskPct * math.Pow(riskMultiplier, float64(level))
}

// Replay folds a trader's closed-trade outcomes (oldest first) into the
// current level state. It is pure and idempotent; callers must supply the
// outcomes in trade-number order.
func Replay(nettRs []float64, s Settings) LevelState {
	if !s.GamificationEnabled {
		return LevelState{
			Level:          0,
			CumRSinceLevel: 0,
			RToNextLevel:   round(s.StepsizeUp, 2),
			CurrentRiskPct: s.BaseRiskPct,
		}
	}

	level, cum := 0, 0.0
	for _, r := range nettRs {
		level, cum = step(level, cum, r, s.StepsizeUp)
	}
	return snapshot(level, cum, s)
}

// ReplayEach yields the level state after every outcome in sequence. The k-th
// element equals Replay over the first k+1 outcomes.
func ReplayEach(nettRs []float64, s Settings) []LevelState {
	out := make([]LevelState, len(nettRs))
	if !s.GamificationEnabled {
		disabled := Replay(nil, s)
		for i := range out {
			out[i] = disabled
		}
		return out
	}

	level, cum := 0, 0.0
	for i, r := range nettRs {
		level, cum = step(level, cum, r, s.StepsizeUp)
		out[i] = snapshot(level, cum, s)
	}
	return out
}

// step applies one trade outcome. A negative cumulative R drops one level
// (floored) and discards the deficit; reaching the step size climbs one level
// and carries the excess forward. At most one transition fires per outcome,
// and the down check runs strictly before the up check.
func step(level int, cum, nettR, stepUp float64) (int, float64) {
	cum += nettR
	if cum < 0 {
		if level > minLevel {
			level--
		}
		return level, 0
	}
	if cum >= stepUp {
		return level + 1, cum - stepUp
	}
	return level, cum
}

func snapshot(level int, cum float64, s Settings) LevelState {
	return LevelState{
		Level:          level,
		CumRSinceLevel: round(cum, 4),
		RToNextLevel:   round(math.Max(0, s.StepsizeUp-cum), 2),
		CurrentRiskPct: RiskPctForLevel(s.BaseRiskPct, s.RiskMultiplier, level),
	}
}
