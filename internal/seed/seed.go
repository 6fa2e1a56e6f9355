package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"logbook/internal/logger"
	"logbook/internal/service"
	"logbook/internal/store/model"
)

// documentSchema constrains a seed file. Trades carry raw inputs only; every
// derived field is recomputed through the normal creation path so a seeded
// journal is indistinguishable from a hand-entered one.
const documentSchema = `{
	"type": "object",
	"required": ["traders"],
	"properties": {
		"traders": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "pin"],
				"properties": {
					"name": {"type": "string", "minLength": 1, "maxLength": 50},
					"pin": {"type": "string", "minLength": 4, "maxLength": 8},
					"settings": {
						"type": "object",
						"properties": {
							"account_start": {"type": "number", "exclusiveMinimum": 0},
							"base_risk_pct": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
							"risk_multiplier": {"type": "number", "minimum": 1},
							"stepsize_up": {"type": "number", "exclusiveMinimum": 0},
							"target_ev": {"type": "number"},
							"gamification_enabled": {"type": "boolean"}
						}
					},
					"trades": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["ticker", "date_entry", "price_entry", "price_stop", "contracts"],
							"properties": {
								"ticker": {"type": "string", "minLength": 1},
								"date_entry": {"type": "string"},
								"date_exit": {"type": "string"},
								"price_entry": {"type": "number"},
								"price_stop": {"type": "number"},
								"price_tp": {"type": "string"},
								"price_exit": {"type": "number"},
								"contracts": {"type": "number"},
								"multiplier": {"type": "number"},
								"analysed": {"type": "boolean"},
								"max_win_r": {"type": "number"},
								"notes": {"type": "string"},
								"tags": {"type": "array", "items": {"type": "string"}}
							}
						}
					}
				}
			}
		}
	}
}`

var compiledSchema = jsonschema.MustCompileString("seed.json", documentSchema)

// Result reports what an import run touched.
type Result struct {
	TradersCreated int
	TradersSkipped int
	TradesCreated  int
}

// Importer loads a demo/bootstrap dataset through the regular services.
type Importer struct {
	traders *service.TraderService
	trades  *service.TradeService
}

func NewImporter(traders *service.TraderService, trades *service.TradeService) *Importer {
	return &Importer{traders: traders, trades: trades}
}

// ImportFile reads, validates and imports a seed document from disk.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read seed file: %w", err)
	}
	return im.Import(ctx, string(raw))
}

// Import validates the document and creates its traders and trades. Traders
// whose name already exists are skipped entirely, so re-running the import is
// harmless.
func (im *Importer) Import(ctx context.Context, raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return Result{}, fmt.Errorf("seed document is not valid json")
	}
	var doc any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("decode seed document: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Result{}, fmt.Errorf("seed document rejected: %w", err)
	}

	var res Result
	var importErr error
	gjson.Parse(raw).Get("traders").ForEach(func(_, node gjson.Result) bool {
		created, trades, err := im.importTrader(ctx, node)
		if err != nil {
			importErr = err
			return false
		}
		if created {
			res.TradersCreated++
			res.TradesCreated += trades
		} else {
			res.TradersSkipped++
		}
		return true
	})
	if importErr != nil {
		return res, importErr
	}
	logger.Infof("seed import done: traders=%d skipped=%d trades=%d",
		res.TradersCreated, res.TradersSkipped, res.TradesCreated)
	return res, nil
}

func (im *Importer) importTrader(ctx context.Context, node gjson.Result) (created bool, trades int, err error) {
	name := node.Get("name").String()
	trader, err := im.traders.Register(ctx, name, node.Get("pin").String())
	if err == service.ErrNameTaken {
		logger.Debugf("seed: trader %s already exists, skipping", name)
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("seed trader %s: %w", name, err)
	}

	if settings := node.Get("settings"); settings.Exists() {
		if err := im.traders.UpdateSettings(ctx, trader.ID, trader.ID, settingsFrom(settings, trader)); err != nil {
			return false, 0, fmt.Errorf("seed settings for %s: %w", name, err)
		}
	}

	var tradeErr error
	node.Get("trades").ForEach(func(_, t gjson.Result) bool {
		req, upd, err := tradeFrom(t)
		if err != nil {
			tradeErr = fmt.Errorf("seed trade for %s: %w", name, err)
			return false
		}
		stored, err := im.trades.Create(ctx, trader.ID, req)
		if err != nil {
			tradeErr = fmt.Errorf("seed trade for %s: %w", name, err)
			return false
		}
		if upd != nil {
			if _, err := im.trades.UpdateReview(ctx, trader.ID, stored.ID, *upd); err != nil {
				tradeErr = fmt.Errorf("seed review for %s: %w", name, err)
				return false
			}
		}
		trades++
		return true
	})
	if tradeErr != nil {
		return false, trades, tradeErr
	}
	return true, trades, nil
}

func settingsFrom(node gjson.Result, trader *model.TraderModel) model.TraderSettings {
	s := model.TraderSettings{
		AccountStart:        trader.AccountStart,
		BaseRiskPct:         trader.BaseRiskPct,
		RiskMultiplier:      trader.RiskMultiplier,
		StepsizeUp:          trader.StepsizeUp,
		TargetEV:            trader.TargetEV,
		GamificationEnabled: trader.GamificationEnabled,
	}
	if v := node.Get("account_start"); v.Exists() {
		s.AccountStart = v.Float()
	}
	if v := node.Get("base_risk_pct"); v.Exists() {
		s.BaseRiskPct = v.Float()
	}
	if v := node.Get("risk_multiplier"); v.Exists() {
		s.RiskMultiplier = v.Float()
	}
	if v := node.Get("stepsize_up"); v.Exists() {
		s.StepsizeUp = v.Float()
	}
	if v := node.Get("target_ev"); v.Exists() {
		s.TargetEV = v.Float()
	}
	if v := node.Get("gamification_enabled"); v.Exists() {
		s.GamificationEnabled = v.Bool()
	}
	return s
}

func tradeFrom(node gjson.Result) (service.CreateTradeRequest, *service.ReviewUpdate, error) {
	dateEntry, err := parseDate(node.Get("date_entry").String())
	if err != nil {
		return service.CreateTradeRequest{}, nil, fmt.Errorf("date_entry: %w", err)
	}
	req := service.CreateTradeRequest{
		Ticker:     node.Get("ticker").String(),
		DateEntry:  dateEntry,
		PriceEntry: node.Get("price_entry").Float(),
		PriceStop:  node.Get("price_stop").Float(),
		PriceTP:    node.Get("price_tp").String(),
		Contracts:  node.Get("contracts").Float(),
		Multiplier: node.Get("multiplier").Float(),
		Notes:      node.Get("notes").String(),
	}
	if v := node.Get("price_exit"); v.Exists() {
		f := v.Float()
		req.PriceExit = &f
	}
	if v := node.Get("date_exit"); v.Exists() {
		d, err := parseDate(v.String())
		if err != nil {
			return service.CreateTradeRequest{}, nil, fmt.Errorf("date_exit: %w", err)
		}
		req.DateExit = &d
	}
	for _, tag := range node.Get("tags").Array() {
		req.Tags = append(req.Tags, tag.String())
	}

	var upd *service.ReviewUpdate
	if a := node.Get("analysed"); a.Exists() && a.Bool() {
		v := true
		upd = &service.ReviewUpdate{Analysed: &v}
	}
	if m := node.Get("max_win_r"); m.Exists() {
		if upd == nil {
			upd = &service.ReviewUpdate{}
		}
		f := m.Float()
		upd.MaxWinR = &f
	}
	return req, upd, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
