// Package importer loads YAML journal documents into the store.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
	"trading-journal/pkg/utils"
)

// DefaultUserID owns records imported without a user_id.
const DefaultUserID = "local"

// Document is a complete journal export.
type Document struct {
	UserID           string                    `yaml:"user_id"`
	Accounts         []AccountEntry            `yaml:"accounts"`
	Strategies       []models.Strategy         `yaml:"strategies"`
	Mistakes         []models.Mistake          `yaml:"mistakes"`
	Tags             []models.Tag              `yaml:"tags"`
	Trades           []TradeEntry              `yaml:"trades"`
	DailyPerformance []models.DailyPerformance `yaml:"daily_performance"`
	PropFirmRules    []models.PropFirmRule     `yaml:"prop_firm_rules"`
}

// AccountEntry is an account with import defaults: USD and active.
type AccountEntry struct {
	models.Account `yaml:",inline"`
}

// UnmarshalYAML presets the defaults before decoding the node.
func (e *AccountEntry) UnmarshalYAML(node *yaml.Node) error {
	e.Account = models.Account{Currency: "USD", IsActive: true}
	return node.Decode(&e.Account)
}

// TradeEntry is a trade together with its psychology note and catalog
// references. References match a catalog entry's ID or name.
type TradeEntry struct {
	models.Trade `yaml:",inline"`
	Psychology   *models.PsychologyNote `yaml:"psychology"`
	Strategies   []string               `yaml:"strategies"`
	Mistakes     []string               `yaml:"mistakes"`
	Tags         []string               `yaml:"tags"`
}

// Result counts the records written per entity.
type Result struct {
	Accounts         int `json:"accounts"`
	Trades           int `json:"trades"`
	PsychologyNotes  int `json:"psychology_notes"`
	Strategies       int `json:"strategies"`
	Mistakes         int `json:"mistakes"`
	Tags             int `json:"tags"`
	Links            int `json:"links"`
	DailyPerformance int `json:"daily_performance"`
	PropFirmRules    int `json:"prop_firm_rules"`
}

func (r Result) counts() map[string]int {
	return map[string]int{
		"accounts":          r.Accounts,
		"trades":            r.Trades,
		"psychology_notes":  r.PsychologyNotes,
		"strategies":        r.Strategies,
		"mistakes":          r.Mistakes,
		"tags":              r.Tags,
		"links":             r.Links,
		"daily_performance": r.DailyPerformance,
		"prop_firm_rules":   r.PropFirmRules,
	}
}

// Parse decodes a journal document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("%w: decoding journal: %v", apperrors.ErrInputValidation, err)
	}
	return &doc, nil
}

// Importer writes journal documents through a store.Writer.
type Importer struct {
	store  store.Writer
	logger zerolog.Logger
	newID  func() string
}

// New creates an importer.
func New(w store.Writer, logger zerolog.Logger) *Importer {
	return &Importer{
		store:  w,
		logger: logging.WithOperation(logger, "import"),
		newID:  utils.NewID,
	}
}

// ImportFile reads and imports a YAML file.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return Result{}, err
	}

	res, err := im.Import(ctx, doc)
	if err != nil {
		return res, err
	}
	logging.LogImport(im.logger, path, res.counts())
	return res, nil
}

// Import validates the whole document, then saves it. Nothing is written
// when validation fails.
func (im *Importer) Import(ctx context.Context, doc *Document) (Result, error) {
	var res Result

	if err := im.prepare(doc); err != nil {
		return res, err
	}
	links, err := resolveLinks(doc)
	if err != nil {
		return res, err
	}

	for i := range doc.Accounts {
		if err := im.store.SaveAccount(ctx, &doc.Accounts[i].Account); err != nil {
			return res, err
		}
		res.Accounts++
	}
	for i := range doc.Strategies {
		if err := im.store.SaveStrategy(ctx, &doc.Strategies[i]); err != nil {
			return res, err
		}
		res.Strategies++
	}
	for i := range doc.Mistakes {
		if err := im.store.SaveMistake(ctx, &doc.Mistakes[i]); err != nil {
			return res, err
		}
		res.Mistakes++
	}
	for i := range doc.Tags {
		if err := im.store.SaveTag(ctx, &doc.Tags[i]); err != nil {
			return res, err
		}
		res.Tags++
	}

	for i := range doc.Trades {
		entry := &doc.Trades[i]
		if err := im.store.SaveTrade(ctx, &entry.Trade); err != nil {
			return res, err
		}
		res.Trades++

		if entry.Psychology != nil {
			if err := im.store.SavePsychologyNote(ctx, entry.Psychology); err != nil {
				return res, err
			}
			res.PsychologyNotes++
		}
	}

	for _, l := range links.strategies {
		if err := im.store.LinkStrategy(ctx, l); err != nil {
			return res, err
		}
		res.Links++
	}
	for _, l := range links.mistakes {
		if err := im.store.LinkMistake(ctx, l); err != nil {
			return res, err
		}
		res.Links++
	}
	for _, l := range links.tags {
		if err := im.store.LinkTag(ctx, l); err != nil {
			return res, err
		}
		res.Links++
	}

	for i := range doc.DailyPerformance {
		if err := im.store.SaveDailyPerformance(ctx, &doc.DailyPerformance[i]); err != nil {
			return res, err
		}
		res.DailyPerformance++
	}
	for i := range doc.PropFirmRules {
		if err := im.store.SavePropFirmRule(ctx, &doc.PropFirmRules[i]); err != nil {
			return res, err
		}
		res.PropFirmRules++
	}

	return res, nil
}

// prepare fills IDs and defaults and validates every record.
func (im *Importer) prepare(doc *Document) error {
	userID := doc.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	now := time.Now().UTC()

	for i := range doc.Accounts {
		a := &doc.Accounts[i].Account
		im.ensureID(&a.ID)
		if a.UserID == "" {
			a.UserID = userID
		}
		if a.Name == "" {
			return apperrors.NewValidationError(fmt.Sprintf("accounts[%d].name", i), a.Name, "is required")
		}
		if !a.Type.Valid() {
			return apperrors.NewValidationError(fmt.Sprintf("accounts[%d].type", i), a.Type, "unknown account type")
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
	}

	for i := range doc.Strategies {
		s := &doc.Strategies[i]
		im.ensureID(&s.ID)
		if s.UserID == "" {
			s.UserID = userID
		}
	}
	for i := range doc.Mistakes {
		m := &doc.Mistakes[i]
		im.ensureID(&m.ID)
		if m.UserID == "" {
			m.UserID = userID
		}
	}
	for i := range doc.Tags {
		t := &doc.Tags[i]
		im.ensureID(&t.ID)
		if t.UserID == "" {
			t.UserID = userID
		}
	}

	for i := range doc.Trades {
		entry := &doc.Trades[i]
		t := &entry.Trade
		im.ensureID(&t.ID)
		if t.UserID == "" {
			t.UserID = userID
		}
		if t.Status == "" {
			if t.ClosedAt != nil {
				t.Status = models.TradeClosed
			} else {
				t.Status = models.TradeOpen
			}
		}
		if t.Status == models.TradeClosed && t.PnL == nil && t.ExitPrice != nil {
			pnl := derivePnL(*t)
			t.PnL = &pnl
		}
		if err := t.Validate(); err != nil {
			return apperrors.Wrapf(err, "trades[%d] %s", i, t.ID)
		}
		if entry.Psychology != nil {
			im.ensureID(&entry.Psychology.ID)
			entry.Psychology.TradeID = t.ID
			if c := entry.Psychology.ConfidenceScore; c != nil && (*c < 1 || *c > 5) {
				return apperrors.NewValidationError(fmt.Sprintf("trades[%d].psychology.confidence_score", i), *c, "must be between 1 and 5")
			}
		}
	}

	for i := range doc.DailyPerformance {
		d := &doc.DailyPerformance[i]
		im.ensureID(&d.ID)
		if d.AccountID == "" {
			return apperrors.NewValidationError(fmt.Sprintf("daily_performance[%d].account_id", i), d.AccountID, "is required")
		}
		if d.Date.IsZero() {
			return apperrors.NewValidationError(fmt.Sprintf("daily_performance[%d].date", i), d.Date, "is required")
		}
	}

	for i := range doc.PropFirmRules {
		r := &doc.PropFirmRules[i]
		im.ensureID(&r.ID)
		if r.AccountID == "" {
			return apperrors.NewValidationError(fmt.Sprintf("prop_firm_rules[%d].account_id", i), r.AccountID, "is required")
		}
		switch r.Status {
		case "":
			r.Status = models.ChallengeActive
		case models.ChallengeActive, models.ChallengePassed, models.ChallengeFailed:
		default:
			return apperrors.NewValidationError(fmt.Sprintf("prop_firm_rules[%d].status", i), r.Status, "must be active, passed or failed")
		}
	}

	return nil
}

func (im *Importer) ensureID(id *string) {
	if *id == "" {
		*id = im.newID()
	}
}

// derivePnL computes the realized P&L of a closed trade from its prices.
func derivePnL(t models.Trade) float64 {
	move := *t.ExitPrice - t.EntryPrice
	if t.Direction == models.DirectionShort {
		move = -move
	}
	return utils.Round2(move*t.PositionSize - t.Fees)
}

type resolvedLinks struct {
	strategies []models.StrategyLink
	mistakes   []models.MistakeLink
	tags       []models.TagLink
}

// resolveLinks turns the trade catalog references into join rows.
func resolveLinks(doc *Document) (resolvedLinks, error) {
	var out resolvedLinks

	strategies := catalogIndex(len(doc.Strategies), func(i int) (string, string) {
		return doc.Strategies[i].ID, doc.Strategies[i].Name
	})
	mistakes := catalogIndex(len(doc.Mistakes), func(i int) (string, string) {
		return doc.Mistakes[i].ID, doc.Mistakes[i].Name
	})
	tags := catalogIndex(len(doc.Tags), func(i int) (string, string) {
		return doc.Tags[i].ID, doc.Tags[i].Name
	})

	for i, entry := range doc.Trades {
		for _, ref := range entry.Strategies {
			id, ok := strategies[ref]
			if !ok {
				return out, apperrors.NewValidationError(fmt.Sprintf("trades[%d].strategies", i), ref, "unknown strategy")
			}
			out.strategies = append(out.strategies, models.StrategyLink{TradeID: entry.ID, StrategyID: id})
		}
		for _, ref := range entry.Mistakes {
			id, ok := mistakes[ref]
			if !ok {
				return out, apperrors.NewValidationError(fmt.Sprintf("trades[%d].mistakes", i), ref, "unknown mistake")
			}
			out.mistakes = append(out.mistakes, models.MistakeLink{TradeID: entry.ID, MistakeID: id})
		}
		for _, ref := range entry.Tags {
			id, ok := tags[ref]
			if !ok {
				return out, apperrors.NewValidationError(fmt.Sprintf("trades[%d].tags", i), ref, "unknown tag")
			}
			out.tags = append(out.tags, models.TagLink{TradeID: entry.ID, TagID: id})
		}
	}
	return out, nil
}

// catalogIndex maps both IDs and names to IDs. IDs win over names.
func catalogIndex(n int, entry func(int) (id, name string)) map[string]string {
	index := make(map[string]string, n*2)
	for i := 0; i < n; i++ {
		id, name := entry(i)
		if name != "" {
			index[name] = id
		}
	}
	for i := 0; i < n; i++ {
		id, _ := entry(i)
		index[id] = id
	}
	return index
}
