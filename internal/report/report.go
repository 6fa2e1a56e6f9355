package report

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"logbook/internal/store"
	"logbook/internal/store/model"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"

	chartWidthPx  = 1200
	chartHeightPx = 420
)

var seriesColors = []string{"#3b82f6", "#fbbf24", "#34d399"}

// Renderer builds the performance dashboard page: one equity-curve chart and
// one cumulative nett R chart, one series per trader, indexed by trade number.
// It reads stored snapshots only.
type Renderer struct {
	store store.Store
}

func NewRenderer(st store.Store) *Renderer {
	return &Renderer{store: st}
}

// RenderHTML writes the self-contained dashboard page. A traderID of zero
// charts every trader; a non-zero ID charts that trader alone.
func (r *Renderer) RenderHTML(ctx context.Context, w io.Writer, traderID int64) error {
	var traders []model.TraderModel
	if traderID != 0 {
		trader, err := r.store.Traders().FindByID(ctx, traderID)
		if err != nil {
			return err
		}
		traders = []model.TraderModel{*trader}
	} else {
		var err error
		traders, err = r.store.Traders().List(ctx)
		if err != nil {
			return fmt.Errorf("list traders: %w", err)
		}
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = "Trading Logbook"

	equity := newLineChart("Equity Curve", "account equity after each closed trade")
	cumR := newLineChart("Cumulative Nett R", "running sum of realized R-multiples")

	maxLen := 0
	type traderSeries struct {
		name   string
		equity []opts.LineData
		sumR   []opts.LineData
		start  float64
	}
	var series []traderSeries

	for i := range traders {
		trades, err := r.store.Trades().ListByTrader(ctx, traders[i].ID)
		if err != nil {
			return fmt.Errorf("list trades for %s: %w", traders[i].Name, err)
		}
		ts := traderSeries{name: traders[i].Name, start: traders[i].AccountStart}
		ts.equity, ts.sumR = buildSeries(traders[i].AccountStart, trades)
		if len(ts.equity) > maxLen {
			maxLen = len(ts.equity)
		}
		series = append(series, ts)
	}

	xAxis := make([]string, maxLen)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("#%d", i)
	}
	equity.SetXAxis(xAxis)
	cumR.SetXAxis(xAxis)

	for i, ts := range series {
		color := seriesColors[i%len(seriesColors)]
		equity.AddSeries(ts.name, ts.equity, charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}))
		cumR.AddSeries(ts.name, ts.sumR, charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}))
	}

	page.AddCharts(equity, cumR)
	return page.Render(w)
}

// buildSeries walks a trader's journal in trade-number order. Point zero is
// the starting state; open trades hold the previous value so the curve stays
// aligned with trade numbers.
func buildSeries(accountStart float64, trades []model.TradeModel) (equity, sumR []opts.LineData) {
	equity = append(equity, opts.LineData{Value: accountStart})
	sumR = append(sumR, opts.LineData{Value: 0.0})
	lastEquity := accountStart
	lastSum := 0.0
	for _, t := range trades {
		if t.EquityAfter != nil {
			lastEquity = *t.EquityAfter
		}
		if t.SumR != nil {
			lastSum = *t.SumR
		}
		equity = append(equity, opts.LineData{Value: lastEquity})
		sumR = append(sumR, opts.LineData{Value: lastSum})
	}
	return equity, sumR
}

func newLineChart(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			Subtitle:      subtitle,
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}
