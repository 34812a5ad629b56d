// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		platform TEXT,
		initial_balance REAL NOT NULL,
		current_balance REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		asset TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		position_size REAL NOT NULL,
		stop_loss REAL,
		take_profit REAL,
		fees REAL NOT NULL DEFAULT 0,
		pnl REAL,
		risk_reward REAL,
		status TEXT NOT NULL DEFAULT 'open',
		opened_at DATETIME NOT NULL,
		closed_at DATETIME,
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS trade_psychology (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL UNIQUE,
		notes TEXT,
		emotion TEXT,
		confidence_score INTEGER,
		followed_plan INTEGER,
		review_notes TEXT,
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trade_strategies (
		trade_id TEXT NOT NULL,
		strategy_id TEXT NOT NULL,
		PRIMARY KEY (trade_id, strategy_id),
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE,
		FOREIGN KEY (strategy_id) REFERENCES strategies(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trade_tags (
		trade_id TEXT NOT NULL,
		tag_id TEXT NOT NULL,
		PRIMARY KEY (trade_id, tag_id),
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS mistakes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trade_mistakes (
		trade_id TEXT NOT NULL,
		mistake_id TEXT NOT NULL,
		PRIMARY KEY (trade_id, mistake_id),
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE,
		FOREIGN KEY (mistake_id) REFERENCES mistakes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS prop_firm_rules (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		max_daily_loss REAL,
		max_drawdown REAL,
		profit_target REAL,
		min_trading_days INTEGER,
		challenge_start DATE,
		challenge_end DATE,
		status TEXT NOT NULL DEFAULT 'active',
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS daily_performance (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		date DATE NOT NULL,
		pnl REAL NOT NULL DEFAULT 0,
		cumulative_pnl REAL NOT NULL DEFAULT 0,
		drawdown REAL NOT NULL DEFAULT 0,
		trade_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE(account_id, date),
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
	CREATE INDEX IF NOT EXISTS idx_trades_status_closed ON trades(status, closed_at);
	CREATE INDEX IF NOT EXISTS idx_trades_opened ON trades(opened_at);
	CREATE INDEX IF NOT EXISTS idx_daily_account_date ON daily_performance(account_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Accounts
// ============================================================================

const accountColumns = "id, user_id, name, type, platform, initial_balance, current_balance, currency, is_active, created_at"

// GetAccounts retrieves accounts ordered by type then name.
func (s *SQLiteStore) GetAccounts(ctx context.Context, filter AccountFilter) ([]models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE 1=1"
	args := []interface{}{}

	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY type, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("accounts", "query", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("accounts", "scan", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetAccount retrieves a single account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrAccountNotFound, "account %q", id)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("accounts", "get", err)
	}
	return &a, nil
}

// SaveAccount inserts or replaces an account.
func (s *SQLiteStore) SaveAccount(ctx context.Context, a *models.Account) error {
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.Name, a.Type, a.Platform, a.InitialBalance, a.CurrentBalance, a.Currency, boolToInt(a.IsActive), created.UTC())
	if err != nil {
		return apperrors.NewStoreError("accounts", "save", err)
	}
	return nil
}

func scanAccount(sc scanner) (models.Account, error) {
	var a models.Account
	var platform sql.NullString
	var active int
	var created sql.NullTime
	if err := sc.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &platform, &a.InitialBalance, &a.CurrentBalance, &a.Currency, &active, &created); err != nil {
		return a, err
	}
	a.Platform = nullString(platform)
	a.IsActive = active == 1
	if created.Valid {
		a.CreatedAt = created.Time
	}
	return a, nil
}

// ============================================================================
// Trades
// ============================================================================

const tradeColumns = "id, account_id, user_id, asset, asset_type, direction, entry_price, exit_price, position_size, stop_loss, take_profit, fees, pnl, risk_reward, status, opened_at, closed_at"

// GetTrades retrieves trades from the database.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.AssetType != "" {
		query += " AND asset_type = ?"
		args = append(args, filter.AssetType)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.ClosedFrom.IsZero() {
		query += " AND closed_at >= ?"
		args = append(args, filter.ClosedFrom.UTC())
	}
	if !filter.ClosedTo.IsZero() {
		query += " AND closed_at <= ?"
		args = append(args, filter.ClosedTo.UTC())
	}

	orderBy := filter.OrderBy
	if orderBy != OrderClosedAt {
		orderBy = OrderOpenedAt
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", orderBy, direction, direction)

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("trades", "query", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		var t models.Trade
		var exitPrice, stopLoss, takeProfit, pnl, riskReward sql.NullFloat64
		var closedAt sql.NullTime

		if err := rows.Scan(&t.ID, &t.AccountID, &t.UserID, &t.Asset, &t.AssetType, &t.Direction, &t.EntryPrice, &exitPrice, &t.PositionSize, &stopLoss, &takeProfit, &t.Fees, &pnl, &riskReward, &t.Status, &t.OpenedAt, &closedAt); err != nil {
			return nil, apperrors.NewStoreError("trades", "scan", err)
		}

		t.ExitPrice = nullFloat(exitPrice)
		t.StopLoss = nullFloat(stopLoss)
		t.TakeProfit = nullFloat(takeProfit)
		t.PnL = nullFloat(pnl)
		t.RiskReward = nullFloat(riskReward)
		t.ClosedAt = nullTime(closedAt)
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// SaveTrade inserts or replaces a trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, t *models.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.AccountID, t.UserID, t.Asset, t.AssetType, t.Direction, t.EntryPrice, t.ExitPrice, t.PositionSize,
		t.StopLoss, t.TakeProfit, t.Fees, t.PnL, t.RiskReward, t.Status, t.OpenedAt.UTC(), utcPtr(t.ClosedAt))
	if err != nil {
		return apperrors.NewStoreError("trades", "save", err)
	}
	return nil
}

// ============================================================================
// Daily Performance
// ============================================================================

// GetDailyPerformance retrieves daily performance rows in ascending date order.
func (s *SQLiteStore) GetDailyPerformance(ctx context.Context, filter DailyFilter) ([]models.DailyPerformance, error) {
	query := "SELECT id, account_id, date, pnl, cumulative_pnl, drawdown, trade_count FROM daily_performance WHERE 1=1"
	args := []interface{}{}

	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if !filter.From.IsZero() {
		query += " AND date >= ?"
		args = append(args, dateOnly(filter.From))
	}
	if !filter.To.IsZero() {
		query += " AND date <= ?"
		args = append(args, dateOnly(filter.To))
	}

	query += " ORDER BY date ASC, account_id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("daily_performance", "query", err)
	}
	defer rows.Close()

	days := []models.DailyPerformance{}
	for rows.Next() {
		var d models.DailyPerformance
		if err := rows.Scan(&d.ID, &d.AccountID, &d.Date, &d.PnL, &d.CumulativePnL, &d.Drawdown, &d.TradeCount); err != nil {
			return nil, apperrors.NewStoreError("daily_performance", "scan", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SaveDailyPerformance inserts or replaces the row for an account and date.
func (s *SQLiteStore) SaveDailyPerformance(ctx context.Context, d *models.DailyPerformance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO daily_performance (id, account_id, date, pnl, cumulative_pnl, drawdown, trade_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.AccountID, dateOnly(d.Date), d.PnL, d.CumulativePnL, d.Drawdown, d.TradeCount)
	if err != nil {
		return apperrors.NewStoreError("daily_performance", "save", err)
	}
	return nil
}

// ============================================================================
// Prop Firm Rules
// ============================================================================

// GetPropFirmRule retrieves the rule set of an account, or nil if none exists.
func (s *SQLiteStore) GetPropFirmRule(ctx context.Context, accountID string) (*models.PropFirmRule, error) {
	var r models.PropFirmRule
	var maxDailyLoss, maxDrawdown, profitTarget sql.NullFloat64
	var minDays sql.NullInt64
	var start, end sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, max_daily_loss, max_drawdown, profit_target, min_trading_days, challenge_start, challenge_end, status
		FROM prop_firm_rules WHERE account_id = ?
	`, accountID).Scan(&r.ID, &r.AccountID, &maxDailyLoss, &maxDrawdown, &profitTarget, &minDays, &start, &end, &r.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("prop_firm_rules", "get", err)
	}

	r.MaxDailyLoss = nullFloat(maxDailyLoss)
	r.MaxDrawdown = nullFloat(maxDrawdown)
	r.ProfitTarget = nullFloat(profitTarget)
	if minDays.Valid {
		v := int(minDays.Int64)
		r.MinTradingDays = &v
	}
	r.ChallengeStart = nullTime(start)
	r.ChallengeEnd = nullTime(end)
	return &r, nil
}

// SavePropFirmRule inserts or replaces the rule set of an account.
func (s *SQLiteStore) SavePropFirmRule(ctx context.Context, r *models.PropFirmRule) error {
	status := r.Status
	if status == "" {
		status = models.ChallengeActive
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO prop_firm_rules (id, account_id, max_daily_loss, max_drawdown, profit_target, min_trading_days, challenge_start, challenge_end, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.AccountID, r.MaxDailyLoss, r.MaxDrawdown, r.ProfitTarget, r.MinTradingDays, utcPtr(r.ChallengeStart), utcPtr(r.ChallengeEnd), status)
	if err != nil {
		return apperrors.NewStoreError("prop_firm_rules", "save", err)
	}
	return nil
}

// ============================================================================
// Psychology
// ============================================================================

// GetPsychologyNotes retrieves every psychology note.
func (s *SQLiteStore) GetPsychologyNotes(ctx context.Context) ([]models.PsychologyNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trade_id, notes, emotion, confidence_score, followed_plan, review_notes
		FROM trade_psychology ORDER BY trade_id
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("trade_psychology", "query", err)
	}
	defer rows.Close()

	notes := []models.PsychologyNote{}
	for rows.Next() {
		var n models.PsychologyNote
		var text, emotion, review sql.NullString
		var confidence sql.NullInt64
		var followed sql.NullBool
		if err := rows.Scan(&n.ID, &n.TradeID, &text, &emotion, &confidence, &followed, &review); err != nil {
			return nil, apperrors.NewStoreError("trade_psychology", "scan", err)
		}
		n.Notes = nullString(text)
		n.Emotion = nullString(emotion)
		n.ReviewNotes = nullString(review)
		if confidence.Valid {
			v := int(confidence.Int64)
			n.ConfidenceScore = &v
		}
		if followed.Valid {
			v := followed.Bool
			n.FollowedPlan = &v
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// SavePsychologyNote inserts or replaces the note of a trade.
func (s *SQLiteStore) SavePsychologyNote(ctx context.Context, n *models.PsychologyNote) error {
	var followed interface{}
	if n.FollowedPlan != nil {
		followed = boolToInt(*n.FollowedPlan)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trade_psychology (id, trade_id, notes, emotion, confidence_score, followed_plan, review_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.TradeID, n.Notes, n.Emotion, n.ConfidenceScore, followed, n.ReviewNotes)
	if err != nil {
		return apperrors.NewStoreError("trade_psychology", "save", err)
	}
	return nil
}

// ============================================================================
// Catalogs
// ============================================================================

// GetMistakes retrieves the mistake catalog, newest first.
func (s *SQLiteStore) GetMistakes(ctx context.Context) ([]models.Mistake, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, name, description FROM mistakes ORDER BY created_at DESC, id")
	if err != nil {
		return nil, apperrors.NewStoreError("mistakes", "query", err)
	}
	defer rows.Close()

	mistakes := []models.Mistake{}
	for rows.Next() {
		var m models.Mistake
		var desc sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &desc); err != nil {
			return nil, apperrors.NewStoreError("mistakes", "scan", err)
		}
		m.Description = nullString(desc)
		mistakes = append(mistakes, m)
	}
	return mistakes, rows.Err()
}

// GetStrategies retrieves the strategy catalog ordered by name.
func (s *SQLiteStore) GetStrategies(ctx context.Context) ([]models.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, name, description FROM strategies ORDER BY name")
	if err != nil {
		return nil, apperrors.NewStoreError("strategies", "query", err)
	}
	defer rows.Close()

	strategies := []models.Strategy{}
	for rows.Next() {
		var st models.Strategy
		var desc sql.NullString
		if err := rows.Scan(&st.ID, &st.UserID, &st.Name, &desc); err != nil {
			return nil, apperrors.NewStoreError("strategies", "scan", err)
		}
		st.Description = nullString(desc)
		strategies = append(strategies, st)
	}
	return strategies, rows.Err()
}

// GetTags retrieves the tag catalog ordered by name.
func (s *SQLiteStore) GetTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, name, color FROM tags ORDER BY name")
	if err != nil {
		return nil, apperrors.NewStoreError("tags", "query", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tg models.Tag
		var color sql.NullString
		if err := rows.Scan(&tg.ID, &tg.UserID, &tg.Name, &color); err != nil {
			return nil, apperrors.NewStoreError("tags", "scan", err)
		}
		tg.Color = nullString(color)
		tags = append(tags, tg)
	}
	return tags, rows.Err()
}

// SaveMistake inserts or replaces a mistake.
func (s *SQLiteStore) SaveMistake(ctx context.Context, m *models.Mistake) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO mistakes (id, user_id, name, description) VALUES (?, ?, ?, ?)",
		m.ID, m.UserID, m.Name, m.Description)
	if err != nil {
		return apperrors.NewStoreError("mistakes", "save", err)
	}
	return nil
}

// SaveStrategy inserts or replaces a strategy.
func (s *SQLiteStore) SaveStrategy(ctx context.Context, st *models.Strategy) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO strategies (id, user_id, name, description) VALUES (?, ?, ?, ?)",
		st.ID, st.UserID, st.Name, st.Description)
	if err != nil {
		return apperrors.NewStoreError("strategies", "save", err)
	}
	return nil
}

// SaveTag inserts or replaces a tag.
func (s *SQLiteStore) SaveTag(ctx context.Context, tg *models.Tag) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO tags (id, user_id, name, color) VALUES (?, ?, ?, ?)",
		tg.ID, tg.UserID, tg.Name, tg.Color)
	if err != nil {
		return apperrors.NewStoreError("tags", "save", err)
	}
	return nil
}

// ============================================================================
// Join rows
// ============================================================================

// GetMistakeLinks retrieves trade-mistake links in insertion order.
func (s *SQLiteStore) GetMistakeLinks(ctx context.Context, filter LinkFilter) ([]models.MistakeLink, error) {
	rows, err := s.queryLinks(ctx, "trade_mistakes", "mistake_id", filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []models.MistakeLink{}
	for rows.Next() {
		var l models.MistakeLink
		if err := rows.Scan(&l.TradeID, &l.MistakeID); err != nil {
			return nil, apperrors.NewStoreError("trade_mistakes", "scan", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// GetStrategyLinks retrieves trade-strategy links in insertion order.
func (s *SQLiteStore) GetStrategyLinks(ctx context.Context, filter LinkFilter) ([]models.StrategyLink, error) {
	rows, err := s.queryLinks(ctx, "trade_strategies", "strategy_id", filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []models.StrategyLink{}
	for rows.Next() {
		var l models.StrategyLink
		if err := rows.Scan(&l.TradeID, &l.StrategyID); err != nil {
			return nil, apperrors.NewStoreError("trade_strategies", "scan", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// GetTagLinks retrieves trade-tag links in insertion order.
func (s *SQLiteStore) GetTagLinks(ctx context.Context, filter LinkFilter) ([]models.TagLink, error) {
	rows, err := s.queryLinks(ctx, "trade_tags", "tag_id", filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []models.TagLink{}
	for rows.Next() {
		var l models.TagLink
		if err := rows.Scan(&l.TradeID, &l.TagID); err != nil {
			return nil, apperrors.NewStoreError("trade_tags", "scan", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// queryLinks runs a filtered select over a join table. table and column are
// package constants, never user input.
func (s *SQLiteStore) queryLinks(ctx context.Context, table, catalogColumn string, filter LinkFilter) (*sql.Rows, error) {
	var where []string
	args := []interface{}{}
	if filter.TradeID != "" {
		where = append(where, "trade_id = ?")
		args = append(args, filter.TradeID)
	}
	if filter.CatalogID != "" {
		where = append(where, catalogColumn+" = ?")
		args = append(args, filter.CatalogID)
	}

	query := fmt.Sprintf("SELECT trade_id, %s FROM %s", catalogColumn, table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError(table, "query", err)
	}
	return rows, nil
}

// LinkMistake attaches a mistake to a trade.
func (s *SQLiteStore) LinkMistake(ctx context.Context, l models.MistakeLink) error {
	return s.link(ctx, "trade_mistakes", "mistake_id", l.TradeID, l.MistakeID)
}

// LinkStrategy attaches a strategy to a trade.
func (s *SQLiteStore) LinkStrategy(ctx context.Context, l models.StrategyLink) error {
	return s.link(ctx, "trade_strategies", "strategy_id", l.TradeID, l.StrategyID)
}

// LinkTag attaches a tag to a trade.
func (s *SQLiteStore) LinkTag(ctx context.Context, l models.TagLink) error {
	return s.link(ctx, "trade_tags", "tag_id", l.TradeID, l.TagID)
}

func (s *SQLiteStore) link(ctx context.Context, table, catalogColumn, tradeID, catalogID string) error {
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (trade_id, %s) VALUES (?, ?)", table, catalogColumn)
	if _, err := s.db.ExecContext(ctx, query, tradeID, catalogID); err != nil {
		return apperrors.NewStoreError(table, "save", err)
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

type scanner interface {
	Scan(dest ...interface{}) error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// dateOnly truncates t to midnight UTC of its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
