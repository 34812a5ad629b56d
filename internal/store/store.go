// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trading-journal/internal/models"
)

// Reader is the read-only query surface used by the analytics reports.
type Reader interface {
	// Accounts
	GetAccounts(ctx context.Context, filter AccountFilter) ([]models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)

	// Trades & daily performance
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	GetDailyPerformance(ctx context.Context, filter DailyFilter) ([]models.DailyPerformance, error)

	// Prop firm rules; returns nil, nil when the account has none.
	GetPropFirmRule(ctx context.Context, accountID string) (*models.PropFirmRule, error)

	// Psychology
	GetPsychologyNotes(ctx context.Context) ([]models.PsychologyNote, error)

	// Catalogs
	GetMistakes(ctx context.Context) ([]models.Mistake, error)
	GetStrategies(ctx context.Context) ([]models.Strategy, error)
	GetTags(ctx context.Context) ([]models.Tag, error)

	// Join rows
	GetMistakeLinks(ctx context.Context, filter LinkFilter) ([]models.MistakeLink, error)
	GetStrategyLinks(ctx context.Context, filter LinkFilter) ([]models.StrategyLink, error)
	GetTagLinks(ctx context.Context, filter LinkFilter) ([]models.TagLink, error)
}

// Writer stores journal records. Only the importer writes.
type Writer interface {
	SaveAccount(ctx context.Context, account *models.Account) error
	SaveTrade(ctx context.Context, trade *models.Trade) error
	SaveDailyPerformance(ctx context.Context, day *models.DailyPerformance) error
	SavePropFirmRule(ctx context.Context, rule *models.PropFirmRule) error
	SavePsychologyNote(ctx context.Context, note *models.PsychologyNote) error
	SaveMistake(ctx context.Context, mistake *models.Mistake) error
	SaveStrategy(ctx context.Context, strategy *models.Strategy) error
	SaveTag(ctx context.Context, tag *models.Tag) error
	LinkMistake(ctx context.Context, link models.MistakeLink) error
	LinkStrategy(ctx context.Context, link models.StrategyLink) error
	LinkTag(ctx context.Context, link models.TagLink) error
}

// DataStore defines the interface for data persistence.
type DataStore interface {
	Reader
	Writer

	// Lifecycle
	Close() error
}

// TradeOrder selects the timestamp trades are ordered by.
type TradeOrder string

const (
	OrderOpenedAt TradeOrder = "opened_at"
	OrderClosedAt TradeOrder = "closed_at"
)

// TradeFilter represents filters for querying trades.
// Zero values mean "no filter"; the closed-at bounds are inclusive.
type TradeFilter struct {
	AccountID  string
	AssetType  models.AssetType
	Status     models.TradeStatus
	ClosedFrom time.Time
	ClosedTo   time.Time
	OrderBy    TradeOrder
	Descending bool
	Limit      int
}

// AccountFilter represents filters for querying accounts.
type AccountFilter struct {
	Type       models.AccountType
	ActiveOnly bool
}

// DailyFilter represents filters for querying daily performance rows.
// Rows are always returned in ascending date order.
type DailyFilter struct {
	AccountID string
	From      time.Time
	To        time.Time
	Limit     int
}

// LinkFilter represents filters for querying join rows.
type LinkFilter struct {
	TradeID   string
	CatalogID string
}
