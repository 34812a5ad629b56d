// Package models provides domain models for the trading journal.
package models

import (
	"time"
)

// AccountType represents the category of a trading account.
type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountPropFirm AccountType = "prop_firm"
	AccountPaper    AccountType = "paper"
)

// AccountTypes lists every account category.
var AccountTypes = []AccountType{AccountPaper, AccountPersonal, AccountPropFirm}

// Valid reports whether t is a known account category.
func (t AccountType) Valid() bool {
	switch t {
	case AccountPersonal, AccountPropFirm, AccountPaper:
		return true
	}
	return false
}

// AssetType represents the asset class of a trade.
type AssetType string

const (
	AssetStocks      AssetType = "stocks"
	AssetCrypto      AssetType = "crypto"
	AssetForex       AssetType = "forex"
	AssetCommodities AssetType = "commodities"
	AssetIndices     AssetType = "indices"
)

// AssetTypes lists every asset class in display order.
var AssetTypes = []AssetType{AssetStocks, AssetCrypto, AssetForex, AssetCommodities, AssetIndices}

// Valid reports whether t is a known asset class.
func (t AssetType) Valid() bool {
	switch t {
	case AssetStocks, AssetCrypto, AssetForex, AssetCommodities, AssetIndices:
		return true
	}
	return false
}

// Direction represents the side of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Valid reports whether d is long or short.
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// ChallengeStatus represents the state of a prop-firm challenge.
type ChallengeStatus string

const (
	ChallengeActive ChallengeStatus = "active"
	ChallengePassed ChallengeStatus = "passed"
	ChallengeFailed ChallengeStatus = "failed"
)

// Account represents a trading account.
type Account struct {
	ID             string      `json:"id" yaml:"id"`
	UserID         string      `json:"user_id" yaml:"user_id"`
	Name           string      `json:"name" yaml:"name"`
	Type           AccountType `json:"type" yaml:"type"`
	Platform       *string     `json:"platform" yaml:"platform"`
	InitialBalance float64     `json:"initial_balance" yaml:"initial_balance"`
	CurrentBalance float64     `json:"current_balance" yaml:"current_balance"`
	Currency       string      `json:"currency" yaml:"currency"`
	IsActive       bool        `json:"is_active" yaml:"is_active"`
	CreatedAt      time.Time   `json:"created_at" yaml:"created_at"`
}

// DailyPerformance is one row per account per trading day.
type DailyPerformance struct {
	ID            string    `json:"id" yaml:"id"`
	AccountID     string    `json:"account_id" yaml:"account_id"`
	Date          time.Time `json:"date" yaml:"date"`
	PnL           float64   `json:"pnl" yaml:"pnl"`
	CumulativePnL float64   `json:"cumulative_pnl" yaml:"cumulative_pnl"`
	Drawdown      float64   `json:"drawdown" yaml:"drawdown"`
	TradeCount    int       `json:"trade_count" yaml:"trade_count"`
}

// PropFirmRule holds the risk limits of a prop-firm challenge.
// A nil threshold means the rule is not configured.
type PropFirmRule struct {
	ID             string          `json:"id" yaml:"id"`
	AccountID      string          `json:"account_id" yaml:"account_id"`
	MaxDailyLoss   *float64        `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxDrawdown    *float64        `json:"max_drawdown" yaml:"max_drawdown"`
	ProfitTarget   *float64        `json:"profit_target" yaml:"profit_target"`
	MinTradingDays *int            `json:"min_trading_days" yaml:"min_trading_days"`
	ChallengeStart *time.Time      `json:"challenge_start" yaml:"challenge_start"`
	ChallengeEnd   *time.Time      `json:"challenge_end" yaml:"challenge_end"`
	Status         ChallengeStatus `json:"status" yaml:"status"`
}

// DateLayout is the calendar-date format used for daily keys.
const DateLayout = "2006-01-02"

// DateKey returns the calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
