package services

import (
	"errors"
	"log/slog"
)

// FoodResolver is the local tiered lookup consumed by the orchestrator.
type FoodResolver interface {
	Search(term string, limit int) (*SearchResult, error)
}

// FallbackConnector is the online tier, consulted only on a total local miss.
type FallbackConnector interface {
	SearchFoods(term string, limit int) (*SearchResult, error)
}

// NutritionSearchService sequences the resolver and the online fallback and
// tags provenance. Strictly sequential: the fallback is never queried when
// local data exists, keeping the external network dependency minimal.
//
// The service shares the resolver's cache and owns caching for terms the
// local tiers could not answer: the online result (or the genuine miss) is
// what gets cached, so an identical search within the TTL never scrapes the
// fallback a second time. Outages are not cached; the next search retries.
type NutritionSearchService struct {
	resolver FoodResolver
	fallback FallbackConnector
	cache    *SearchCache
	log      *slog.Logger
}

func NewNutritionSearchService(resolver FoodResolver, fallback FallbackConnector, cache *SearchCache, log *slog.Logger) *NutritionSearchService {
	return &NutritionSearchService{
		resolver: resolver,
		fallback: fallback,
		cache:    cache,
		log:      log.With("component", "nutrition_search"),
	}
}

// SearchUnified resolves term locally and, only when nothing local matched,
// through the online fallback. Fallback outages degrade to "not found" for
// the caller but are logged distinctly from a genuine miss.
func (s *NutritionSearchService) SearchUnified(term string, pageSize int) (*SearchResult, error) {
	key := CacheKey(term, pageSize)
	if cached, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", "term", term, "page_size", pageSize)
		return cached, nil
	}

	local, err := s.resolver.Search(term, pageSize)
	if err != nil {
		return nil, err
	}
	if local.TotalFound > 0 {
		return local, nil
	}

	online, err := s.fallback.SearchFoods(term, pageSize)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			s.log.Warn("fallback unavailable, term unresolved", "term", term, "error", err)
		} else {
			s.log.Error("fallback failed", "term", term, "error", err)
		}
		return notFoundResult(term), nil
	}
	if online.TotalFound > 0 {
		s.cache.Set(key, online)
		return online, nil
	}

	miss := notFoundResult(term)
	s.cache.Set(key, miss)
	return miss, nil
}

func notFoundResult(term string) *SearchResult {
	return &SearchResult{
		Term:       term,
		Sources:    []string{SourceNotFound},
		Items:      []NormalizedItem{},
		TotalFound: 0,
	}
}
