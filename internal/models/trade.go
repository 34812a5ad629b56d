package models

import (
	"time"

	apperrors "trading-journal/internal/errors"
)

// Trade represents a journaled trade.
type Trade struct {
	ID           string      `json:"id" yaml:"id"`
	AccountID    string      `json:"account_id" yaml:"account_id"`
	UserID       string      `json:"user_id" yaml:"user_id"`
	Asset        string      `json:"asset" yaml:"asset"`
	AssetType    AssetType   `json:"asset_type" yaml:"asset_type"`
	Direction    Direction   `json:"direction" yaml:"direction"`
	EntryPrice   float64     `json:"entry_price" yaml:"entry_price"`
	ExitPrice    *float64    `json:"exit_price" yaml:"exit_price"`
	PositionSize float64     `json:"position_size" yaml:"position_size"`
	StopLoss     *float64    `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit   *float64    `json:"take_profit" yaml:"take_profit"`
	Fees         float64     `json:"fees" yaml:"fees"`
	PnL          *float64    `json:"pnl" yaml:"pnl"`
	RiskReward   *float64    `json:"risk_reward" yaml:"risk_reward"`
	Status       TradeStatus `json:"status" yaml:"status"`
	OpenedAt     time.Time   `json:"opened_at" yaml:"opened_at"`
	ClosedAt     *time.Time  `json:"closed_at" yaml:"closed_at"`
}

// IsClosed reports whether the trade is closed with a realized P&L.
func (t Trade) IsClosed() bool {
	return t.Status == TradeClosed && t.PnL != nil
}

// RealizedPnL returns the P&L, treating an open trade as 0.
func (t Trade) RealizedPnL() float64 {
	if t.PnL == nil {
		return 0
	}
	return *t.PnL
}

// Validate checks the enumerations and that PnL and ClosedAt are set
// exactly when the trade is closed.
func (t Trade) Validate() error {
	if t.AccountID == "" {
		return apperrors.NewValidationError("account_id", t.AccountID, "is required")
	}
	if !t.AssetType.Valid() {
		return apperrors.NewValidationError("asset_type", t.AssetType, "unknown asset type")
	}
	if !t.Direction.Valid() {
		return apperrors.NewValidationError("direction", t.Direction, "must be long or short")
	}
	switch t.Status {
	case TradeClosed:
		if t.PnL == nil || t.ClosedAt == nil {
			return apperrors.NewValidationError("status", t.Status, "closed trade needs pnl and closed_at")
		}
	case TradeOpen:
		if t.PnL != nil || t.ClosedAt != nil {
			return apperrors.NewValidationError("status", t.Status, "open trade cannot have pnl or closed_at")
		}
	default:
		return apperrors.NewValidationError("status", t.Status, "must be open or closed")
	}
	return nil
}

// PsychologyNote captures the trader's state for a single trade.
type PsychologyNote struct {
	ID              string  `json:"id" yaml:"id"`
	TradeID         string  `json:"trade_id" yaml:"trade_id"`
	Notes           *string `json:"notes" yaml:"notes"`
	Emotion         *string `json:"emotion" yaml:"emotion"`
	ConfidenceScore *int    `json:"confidence_score" yaml:"confidence_score"` // 1-5
	FollowedPlan    *bool   `json:"followed_plan" yaml:"followed_plan"`
	ReviewNotes     *string `json:"review_notes" yaml:"review_notes"`
}

// Mistake is a user-defined mistake category.
type Mistake struct {
	ID          string  `json:"id" yaml:"id"`
	UserID      string  `json:"user_id" yaml:"user_id"`
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description" yaml:"description"`
}

// Strategy is a user-defined trading strategy.
type Strategy struct {
	ID          string  `json:"id" yaml:"id"`
	UserID      string  `json:"user_id" yaml:"user_id"`
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description" yaml:"description"`
}

// Tag is a user-defined label.
type Tag struct {
	ID     string  `json:"id" yaml:"id"`
	UserID string  `json:"user_id" yaml:"user_id"`
	Name   string  `json:"name" yaml:"name"`
	Color  *string `json:"color" yaml:"color"`
}

// MistakeLink joins a trade to a mistake.
type MistakeLink struct {
	TradeID   string `json:"trade_id" yaml:"trade_id"`
	MistakeID string `json:"mistake_id" yaml:"mistake_id"`
}

// StrategyLink joins a trade to a strategy.
type StrategyLink struct {
	TradeID    string `json:"trade_id" yaml:"trade_id"`
	StrategyID string `json:"strategy_id" yaml:"strategy_id"`
}

// TagLink joins a trade to a tag.
type TagLink struct {
	TradeID string `json:"trade_id" yaml:"trade_id"`
	TagID   string `json:"tag_id" yaml:"tag_id"`
}
