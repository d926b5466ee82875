package services

import (
	"log/slog"
	"time"

	"github.com/lucas-hsi/melitusgym/models"
)

// DatasetScanner is the on-demand file tier consumed by the resolver.
type DatasetScanner interface {
	Scan(term string, limit int) []models.FoodRecord
}

// TacoResolver answers searches through the local tiers:
// cache -> store -> dataset file -> upsert -> cache.
//
// The file is write-through: rows found by a scan are persisted immediately,
// so any term that ever hit the file resolves from the store afterwards.
// For that reason the scan only runs when the store contributed nothing; a
// store hit implies the file holds nothing new for the term.
//
// Empty results are never cached here: the orchestrator may still resolve
// the term online and write the rows through, and a cached empty result
// would hide them from the next identical search. Caching the final outcome
// of a total local miss is the orchestrator's job.
type TacoResolver struct {
	cache   *SearchCache
	store   *FoodStore
	scanner DatasetScanner
	log     *slog.Logger
}

func NewTacoResolver(cache *SearchCache, store *FoodStore, scanner DatasetScanner, log *slog.Logger) *TacoResolver {
	return &TacoResolver{
		cache:   cache,
		store:   store,
		scanner: scanner,
		log:     log.With("component", "taco_resolver"),
	}
}

// Search resolves term against the local tiers, returning at most limit
// items. Store errors propagate; dataset file errors never do.
func (r *TacoResolver) Search(term string, limit int) (*SearchResult, error) {
	key := CacheKey(term, limit)
	if cached, ok := r.cache.Get(key); ok {
		r.log.Debug("cache hit", "term", term, "limit", limit)
		return cached, nil
	}

	start := time.Now()
	records, err := r.store.SearchByName(term, limit)
	if err != nil {
		return nil, err
	}

	var sources []string
	if len(records) > 0 {
		sources = append(sources, SourceTacoDB)
	} else {
		scanned := r.scanner.Scan(term, limit)
		if len(scanned) > 0 {
			written, err := r.store.UpsertAll(scanned)
			if err != nil {
				return nil, err
			}
			r.log.Info("dataset rows ingested", "term", term, "written", written)
			records = scanned
			sources = append(sources, SourceTacoFile)
		}
	}

	items := make([]NormalizedItem, 0, len(records))
	for _, rec := range records {
		items = append(items, NormalizedItemFromRecord(rec))
	}
	if sources == nil {
		sources = []string{}
	}

	result := &SearchResult{
		Term:         term,
		Sources:      sources,
		Items:        items,
		TotalFound:   len(items),
		SearchTimeMs: elapsedMs(start),
	}
	if result.TotalFound > 0 {
		r.cache.Set(key, result)
	}
	return result, nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
