package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lucas-hsi/melitusgym/models"
)

// ErrSourceUnavailable marks a fallback outage (network, non-200, unparsable
// page) so callers can tell it apart from a genuine "not found" when logging.
// It is never surfaced past the search orchestrator.
var ErrSourceUnavailable = errors.New("tbca source unavailable")

const (
	tbcaSearchURL   = "https://www.tbca.net.br/base-dados/composicao_alimentos.php"
	tbcaHTTPTimeout = 12 * time.Second
)

// TBCAConnector scrapes the TBCA food composition site when every local tier
// missed. Found rows are normalized to the canonical per-100g schema and
// upserted into the store so future identical terms resolve locally.
type TBCAConnector struct {
	searchURL string
	client    *http.Client
	store     *FoodStore
	log       *slog.Logger
}

func NewTBCAConnector(store *FoodStore, log *slog.Logger) *TBCAConnector {
	return &TBCAConnector{
		searchURL: tbcaSearchURL,
		client:    &http.Client{Timeout: tbcaHTTPTimeout},
		store:     store,
		log:       log.With("component", "tbca_connector"),
	}
}

type tbcaCandidate struct {
	code      string
	name      string
	detailURL string
}

// SearchFoods submits term to the TBCA search form and enriches the first
// limit hits with their detail-page nutrient tables. An unreachable or
// unparsable site returns ErrSourceUnavailable; a reachable site with no
// rows returns an empty result.
func (c *TBCAConnector) SearchFoods(term string, limit int) (*SearchResult, error) {
	start := time.Now()
	c.log.Info("tbca fallback search", "term", term, "limit", limit)

	candidates, err := c.searchList(term, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var items []NormalizedItem
	var records []models.FoodRecord
	for _, cand := range candidates {
		nutrients, err := c.fetchDetails(cand.detailURL)
		if err != nil {
			c.log.Warn("tbca detail fetch failed", "code", cand.code, "error", err)
			continue
		}
		rec := models.FoodRecord{
			Name:           cand.name,
			NormalizedName: NormalizeText(cand.name),
			EnergyKcal:     nutrients.EnergyKcal,
			EnergyKj:       nutrients.EnergyKj,
			Carbohydrates:  nutrients.Carbohydrates,
			Proteins:       nutrients.Proteins,
			Fat:            nutrients.Fat,
			Fiber:          nutrients.Fiber,
			SodiumMg:       nutrients.Sodium,
		}
		deriveEnergy(&rec)
		records = append(records, rec)

		item := NormalizedItemFromRecord(rec)
		item.ID = "tbca_" + strings.ToLower(cand.code)
		item.Source = SourceTBCAOnline
		items = append(items, item)
	}

	if len(records) > 0 {
		if written, err := c.store.UpsertAll(records); err != nil {
			c.log.Warn("tbca upsert failed", "error", err)
		} else {
			c.log.Info("tbca rows ingested", "term", term, "written", written)
		}
	}

	if items == nil {
		items = []NormalizedItem{}
	}
	return &SearchResult{
		Term:         term,
		Sources:      []string{SourceTBCAOnline},
		Items:        items,
		TotalFound:   len(items),
		SearchTimeMs: elapsedMs(start),
	}, nil
}

func (c *TBCAConnector) searchList(term string, limit int) ([]tbcaCandidate, error) {
	params := url.Values{
		"txt_descricao": {term},
		"txt_codigo":    {""},
		"cmbgrupo":      {"SELECIONE"},
		"cmbsubgrupo":   {"SELECIONE"},
	}
	doc, pageURL, err := c.fetchDocument(c.searchURL + "?" + params.Encode())
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.tbca-table")
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}

	var candidates []tbcaCandidate
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return true
		}
		codeLink := cols.Eq(0).Find("a")
		if codeLink.Length() == 0 {
			return true
		}
		code := strings.TrimSpace(codeLink.Text())
		name := strings.TrimSpace(cols.Eq(1).Text())
		if code == "" || name == "" {
			return true
		}

		detail := ""
		if href, ok := codeLink.Attr("href"); ok {
			if ref, err := url.Parse(href); err == nil {
				detail = pageURL.ResolveReference(ref).String()
			}
		}
		candidates = append(candidates, tbcaCandidate{code: code, name: name, detailURL: detail})
		return len(candidates) < limit
	})
	return candidates, nil
}

// fetchDetails parses the nutrient table of a detail page by matching
// localized row labels to canonical fields. Unmatched labels are ignored.
func (c *TBCAConnector) fetchDetails(detailURL string) (Nutrients, error) {
	var nutrients Nutrients
	if detailURL == "" {
		return nutrients, nil
	}
	doc, _, err := c.fetchDocument(detailURL)
	if err != nil {
		return nutrients, err
	}

	table := doc.Find("table.table-nutricional")
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		label := NormalizeText(cols.Eq(0).Text())
		value := parseNumericCell(cols.Eq(1).Text())
		if value == nil {
			return
		}
		switch {
		case strings.Contains(label, "kj"):
			nutrients.EnergyKj = value
		case strings.Contains(label, "energia") || strings.Contains(label, "kcal"):
			nutrients.EnergyKcal = value
		case strings.Contains(label, "prote"):
			nutrients.Proteins = value
		case strings.Contains(label, "carbo"):
			nutrients.Carbohydrates = value
		case strings.Contains(label, "fibra"):
			nutrients.Fiber = value
		case strings.Contains(label, "lip") || strings.Contains(label, "gordura"):
			nutrients.Fat = value
		case strings.Contains(label, "sodio") || strings.Contains(label, "sodium"):
			nutrients.Sodium = value
		}
	})
	return nutrients, nil
}

func (c *TBCAConnector) fetchDocument(rawURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, resp.Request.URL, nil
}

// deriveEnergy fills the missing energy unit from the present one at
// ingestion time (kJ = kcal * 4.184 and the inverse).
func deriveEnergy(rec *models.FoodRecord) {
	switch {
	case rec.EnergyKcal != nil && rec.EnergyKj == nil:
		kj := *rec.EnergyKcal * kjPerKcal
		rec.EnergyKj = &kj
	case rec.EnergyKj != nil && rec.EnergyKcal == nil:
		kcal := *rec.EnergyKj / kjPerKcal
		rec.EnergyKcal = &kcal
	}
}
