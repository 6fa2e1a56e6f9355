package model

import (
	"time"

	"gorm.io/datatypes"
)

// TraderModel is one participant account. At most three traders exist at a
// time; that cap is enforced by the service, not the schema.
type TraderModel struct {
	ID      int64  `gorm:"column:id;primaryKey" json:"id"`
	Name    string `gorm:"column:name;size:50;uniqueIndex" json:"name"`
	PinHash string `gorm:"column:pin_hash;size:255" json:"-"`

	AccountStart        float64   `gorm:"column:account_start;default:10000" json:"account_start"`
	BaseRiskPct         float64   `gorm:"column:base_risk_pct;default:0.005" json:"base_risk_pct"`
	RiskMultiplier      float64   `gorm:"column:risk_multiplier;default:1.5" json:"risk_multiplier"`
	StepsizeUp          float64   `gorm:"column:stepsize_up;default:30" json:"stepsize_up"`
	TargetEV            float64   `gorm:"column:target_ev;default:0.4" json:"target_ev"`
	GamificationEnabled bool      `gorm:"column:gamification_enabled;default:true" json:"gamification_enabled"`
	CreatedAt           time.Time `gorm:"column:created_at" json:"created_at"`
}

func (TraderModel) TableName() string { return "traders" }

// TraderSettings is the owner-editable slice of a trader row.
type TraderSettings struct {
	AccountStart        float64 `json:"account_start"`
	BaseRiskPct         float64 `json:"base_risk_pct"`
	RiskMultiplier      float64 `json:"risk_multiplier"`
	StepsizeUp          float64 `json:"stepsize_up"`
	TargetEV            float64 `json:"target_ev"`
	GamificationEnabled bool    `json:"gamification_enabled"`
}

// TradeModel is one logged trade. The derived columns (trade_r through
// power_norm) are a frozen snapshot computed at creation time; edits after
// creation touch only the review fields.
type TradeModel struct {
	ID          int64  `gorm:"column:id;primaryKey" json:"id"`
	TraderID    int64  `gorm:"column:trader_id;uniqueIndex:idx_trader_trade_number,priority:1" json:"trader_id"`
	TradeNumber int    `gorm:"column:trade_number;uniqueIndex:idx_trader_trade_number,priority:2" json:"trade_number"`
	Ticker      string `gorm:"column:ticker;size:30" json:"ticker"`

	DateEntry  time.Time  `gorm:"column:date_entry" json:"date_entry"`
	DateExit   *time.Time `gorm:"column:date_exit" json:"date_exit"`
	PriceEntry float64    `gorm:"column:price_entry" json:"price_entry"`
	PriceStop  float64    `gorm:"column:price_stop" json:"price_stop"`
	PriceTP    string     `gorm:"column:price_tp;type:TEXT" json:"price_tp"`
	PriceExit  *float64   `gorm:"column:price_exit" json:"price_exit"`
	Contracts  float64    `gorm:"column:contracts" json:"contracts"`
	Multiplier float64    `gorm:"column:multiplier;default:1" json:"multiplier"`

	TradeR         *float64 `gorm:"column:trade_r" json:"trade_r"`
	NettR          *float64 `gorm:"column:nett_r" json:"nett_r"`
	SumR           *float64 `gorm:"column:sum_r" json:"sum_r"`
	PlannedRiskUSD float64  `gorm:"column:planned_risk_usd" json:"planned_risk_usd"`
	UsdAtRisk      float64  `gorm:"column:usd_at_risk" json:"usd_at_risk"`
	RiskRFactor    float64  `gorm:"column:risk_r_factor" json:"risk_r_factor"`
	PnlUSD         *float64 `gorm:"column:pnl_usd" json:"pnl_usd"`
	EquityBefore   float64  `gorm:"column:equity_before" json:"equity_before"`
	EquityAfter    *float64 `gorm:"column:equity_after" json:"equity_after"`
	Level          int      `gorm:"column:level;default:0" json:"level"`
	LevelToGo      int      `gorm:"column:level_to_go;default:30" json:"level_to_go"`
	RiskPct        float64  `gorm:"column:risk_pct" json:"risk_pct"`
	NormalRiskPct  float64  `gorm:"column:normal_risk_pct" json:"normal_risk_pct"`
	PowerNorm      float64  `gorm:"column:power_norm" json:"power_norm"`

	Analysed        bool           `gorm:"column:analysed;default:false" json:"analysed"`
	MaxWinR         *float64       `gorm:"column:max_win_r" json:"max_win_r"`
	ReasonForLoss   string         `gorm:"column:reason_for_loss;type:TEXT" json:"reason_for_loss"`
	WinOptimization string         `gorm:"column:win_optimization;type:TEXT" json:"win_optimization"`
	Screenshots     datatypes.JSON `gorm:"column:screenshots;type:TEXT" json:"screenshots"`
	Tags            datatypes.JSON `gorm:"column:tags;type:TEXT" json:"tags"`
	Notes           string         `gorm:"column:notes;type:TEXT" json:"notes"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (TradeModel) TableName() string { return "trades" }
