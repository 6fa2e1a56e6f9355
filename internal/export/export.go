package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"logbook/internal/store"
	"logbook/internal/store/model"
)

// csvHeader is the column layout of the exported trade table.
var csvHeader = []string{
	"Trader", "Trade #", "Ticker", "Date Entry", "Date Exit",
	"Entry", "Stop", "TP", "Exit", "Contracts", "Multiplier",
	"Trade R", "Nett R", "Sum R", "Planned Risk $", "$ at Risk",
	"Risk Factor", "PnL $", "Equity Before", "Equity After",
	"Level", "Level to Go", "Risk %", "Normal Risk %", "Power/Norm",
	"Analysed", "Max Win R", "Reason for Loss", "Win Optimization",
	"Screenshots", "Tags", "Notes",
}

// Exporter renders the trade table as CSV. It is read-only presentation: the
// stored derived fields are emitted verbatim, never recomputed.
type Exporter struct {
	store store.Store
}

func NewExporter(st store.Store) *Exporter {
	return &Exporter{store: st}
}

// Filename is the suggested attachment name for an export taken now.
func Filename(now time.Time) string {
	return fmt.Sprintf("trading-logbook-%s.csv", now.Format("2006-01-02"))
}

// Write streams the CSV document. With traderID zero every trader is
// included, ordered by trader name then trade number; otherwise only that
// trader's journal is exported.
func (e *Exporter) Write(ctx context.Context, w io.Writer, traderID int64) error {
	traders, err := e.store.Traders().List(ctx)
	if err != nil {
		return fmt.Errorf("list traders: %w", err)
	}
	sort.Slice(traders, func(i, j int) bool { return traders[i].Name < traders[j].Name })

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, trader := range traders {
		if traderID != 0 && trader.ID != traderID {
			continue
		}
		trades, err := e.store.Trades().ListByTrader(ctx, trader.ID)
		if err != nil {
			return fmt.Errorf("list trades for %s: %w", trader.Name, err)
		}
		for i := range trades {
			if err := cw.Write(row(trader.Name, &trades[i])); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(traderName string, t *model.TradeModel) []string {
	return []string{
		traderName,
		strconv.Itoa(t.TradeNumber),
		t.Ticker,
		t.DateEntry.Format(time.RFC3339),
		timeCell(t.DateExit),
		num(t.PriceEntry),
		num(t.PriceStop),
		t.PriceTP,
		numPtr(t.PriceExit),
		num(t.Contracts),
		num(t.Multiplier),
		numPtr(t.TradeR),
		numPtr(t.NettR),
		numPtr(t.SumR),
		num(t.PlannedRiskUSD),
		num(t.UsdAtRisk),
		num(t.RiskRFactor),
		numPtr(t.PnlUSD),
		num(t.EquityBefore),
		numPtr(t.EquityAfter),
		strconv.Itoa(t.Level),
		strconv.Itoa(t.LevelToGo),
		num(t.RiskPct),
		num(t.NormalRiskPct),
		num(t.PowerNorm),
		yesNo(t.Analysed),
		numPtr(t.MaxWinR),
		t.ReasonForLoss,
		t.WinOptimization,
		listCell(t.Screenshots),
		listCell(t.Tags),
		t.Notes,
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func numPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func timeCell(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func listCell(raw datatypes.JSON) string {
	if len(raw) == 0 {
		return ""
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return string(raw)
	}
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "; "
		}
		out += item
	}
	return out
}
