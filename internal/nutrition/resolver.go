// Package nutrition resolves a parsed food item into quantified macros
// through a tiered fallback chain: cache, food database, AI estimate,
// unknown. "Not found" is never an error; it is a zero-macro item with a
// distinct provenance tag.
package nutrition

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/vithika-cyber/calorie-bot/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Searcher is the food-database search capability.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.FoodRecord, error)
}

// Database adds record-level detail to search. Search responses carry an
// abbreviated nutrient list; the detail fetch returns the full record.
type Database interface {
	Searcher
	GetFood(ctx context.Context, fdcID int64) (*models.FoodRecord, error)
}

// Estimator is the AI capability used when the database has no candidates.
// The phrase already carries quantity and unit, so no gram conversion is
// applied to its output.
type Estimator interface {
	EstimateNutrition(ctx context.Context, foodPhrase string) (*models.Macros, error)
}

type Resolver struct {
	cache        Cache
	db           Database
	estimator    Estimator
	defaultGrams float64
	logger       *zap.Logger
}

func NewResolver(cache Cache, db Database, estimator Estimator, defaultGrams float64, logger *zap.Logger) *Resolver {
	if defaultGrams <= 0 {
		defaultGrams = 100
	}
	return &Resolver{
		cache:        cache,
		db:           db,
		estimator:    estimator,
		defaultGrams: defaultGrams,
		logger:       logger,
	}
}

// maxConcurrentLookups bounds the fan-out for one logging run.
const maxConcurrentLookups = 4

// ResolveAll enriches every item. Items are independent, so lookups run in
// parallel; order of the result matches the input.
func (r *Resolver) ResolveAll(ctx context.Context, items []models.FoodItem) []models.EnrichedFood {
	enriched := make([]models.EnrichedFood, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			enriched[i] = r.Resolve(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return enriched
}

// Resolve runs the fallback chain for one item. Each tier is attempted only
// if the prior tier yielded nothing; a tier failure (including timeout) is
// that tier's "not found".
func (r *Resolver) Resolve(ctx context.Context, item models.FoodItem) models.EnrichedFood {
	key := searchKey(item.Name)

	if rec, ok := r.cache.Get(ctx, key); ok {
		return r.scale(item, rec, models.SourceCache)
	}

	records, err := r.db.Search(ctx, item.Name)
	if err != nil {
		r.logger.Warn("food database lookup failed",
			zap.String("food", item.Name),
			zap.Error(err))
	}
	if len(records) > 0 {
		best := r.detail(ctx, records[0])
		r.cache.Put(ctx, key, best)
		return r.scale(item, best, models.SourceUSDA)
	}

	if macros := r.estimate(ctx, item); macros != nil {
		return models.EnrichedFood{
			FoodItem:   item,
			Macros:     roundMacros(*macros),
			Source:     models.SourceAIEstimated,
			Confidence: "medium",
		}
	}

	r.logger.Warn("all nutrition tiers exhausted", zap.String("food", item.Name))
	return models.EnrichedFood{
		FoodItem:   item,
		Source:     models.SourceUnknown,
		Confidence: "unknown",
	}
}

func (r *Resolver) scale(item models.FoodItem, rec *models.FoodRecord, source models.Source) models.EnrichedFood {
	grams, known := gramsFor(item.Quantity, item.Unit, r.defaultGrams)
	if !known {
		r.logger.Info("unrecognized unit, using default gram weight",
			zap.String("unit", item.Unit),
			zap.Float64("grams", grams))
	}

	mult := grams / 100.0
	return models.EnrichedFood{
		FoodItem: item,
		Macros: roundMacros(models.Macros{
			Calories: rec.Per100g.Calories * mult,
			Protein:  rec.Per100g.Protein * mult,
			Carbs:    rec.Per100g.Carbs * mult,
			Fat:      rec.Per100g.Fat * mult,
			Fiber:    rec.Per100g.Fiber * mult,
			Sugar:    rec.Per100g.Sugar * mult,
		}),
		Grams:      round2(grams),
		Source:     source,
		Confidence: matchConfidence(item.Name, rec.Description),
		MatchedAs:  rec.Description,
		FDCID:      rec.FDCID,
	}
}

// detail returns the full record for a search candidate, keyed by record
// id so repeat lookups of the same food skip the fetch. A failed fetch
// falls back to the abbreviated search data.
func (r *Resolver) detail(ctx context.Context, candidate models.FoodRecord) *models.FoodRecord {
	key := foodKey(candidate.FDCID)
	if rec, ok := r.cache.Get(ctx, key); ok {
		return rec
	}

	rec, err := r.db.GetFood(ctx, candidate.FDCID)
	if err != nil {
		r.logger.Warn("food detail lookup failed",
			zap.Int64("fdc_id", candidate.FDCID),
			zap.Error(err))
	}
	if rec == nil {
		return &candidate
	}

	r.cache.Put(ctx, key, rec)
	return rec
}

func (r *Resolver) estimate(ctx context.Context, item models.FoodItem) *models.Macros {
	if r.estimator == nil {
		return nil
	}

	phrase := strings.TrimSpace(formatQuantity(item.Quantity) + " " + item.Unit + " of " + item.Name)
	macros, err := r.estimator.EstimateNutrition(ctx, phrase)
	if err != nil {
		r.logger.Warn("nutrition estimation failed",
			zap.String("food", item.Name),
			zap.Error(err))
		return nil
	}
	if macros == nil || macros.Calories <= 0 {
		return nil
	}
	return macros
}

// Totals sums enriched items, rounded to two decimals.
func Totals(items []models.EnrichedFood) models.Macros {
	var totals models.Macros
	for _, item := range items {
		totals.Add(item.Macros)
	}
	return roundMacros(totals)
}

func searchKey(name string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(name))
}

func foodKey(fdcID int64) string {
	return "food:" + strconv.FormatInt(fdcID, 10)
}

// matchConfidence grades how well the database description matches the
// query: containment or full word overlap is high, half overlap medium.
func matchConfidence(query, matched string) string {
	q := strings.ToLower(query)
	m := strings.ToLower(matched)
	if strings.Contains(m, q) || strings.Contains(q, m) {
		return "high"
	}

	queryWords := strings.Fields(q)
	matchedWords := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(m, func(r rune) bool {
		return r == ' ' || r == ','
	}) {
		matchedWords[w] = struct{}{}
	}

	overlap := 0
	for _, w := range queryWords {
		if _, ok := matchedWords[w]; ok {
			overlap++
		}
	}

	switch {
	case overlap >= len(queryWords):
		return "high"
	case float64(overlap) >= float64(len(queryWords))*0.5:
		return "medium"
	default:
		return "low"
	}
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func roundMacros(m models.Macros) models.Macros {
	return models.Macros{
		Calories: round2(m.Calories),
		Protein:  round2(m.Protein),
		Carbs:    round2(m.Carbs),
		Fat:      round2(m.Fat),
		Fiber:    round2(m.Fiber),
		Sugar:    round2(m.Sugar),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
