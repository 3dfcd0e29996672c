// Package taxonomy resolves scientific names against the GBIF species match
// API and maintains the persistent classification cache.
package taxonomy

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/logging"
	"github.com/squaremeter/squarelog/internal/model"
)

// matchTypeNone is GBIF's definitive "no such species" answer. It is the only
// response that produces a permanent negative cache entry.
const matchTypeNone = "NONE"

var (
	clientLogger   *slog.Logger
	clientLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	clientLogger, _, err = logging.NewFileLogger("logs/taxonomy.log", "taxonomy", clientLevelVar)
	if err != nil || clientLogger == nil {
		clientLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Client queries the GBIF species match endpoint. Responses are memoized in
// memory for the lifetime of the process; the durable cache lives in the
// resolver.
type Client struct {
	endpoint   string
	httpClient *http.Client
	memo       *gocache.Cache
	logger     *slog.Logger
}

// NewClient creates a GBIF species match client from the settings.
func NewClient(settings *conf.Settings) *Client {
	timeout := settings.Taxonomy.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if settings.Debug {
		clientLevelVar.Set(slog.LevelDebug)
	}
	return &Client{
		endpoint:   settings.Taxonomy.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		memo:       gocache.New(1*time.Hour, 10*time.Minute),
		logger:     clientLogger,
	}
}

// matchResponse mirrors the GBIF species match payload.
type matchResponse struct {
	MatchType     string `json:"matchType"`
	UsageKey      *int64 `json:"usageKey"`
	CanonicalName string `json:"canonicalName"`
	Kingdom       string `json:"kingdom"`
	Phylum        string `json:"phylum"`
	Class         string `json:"class"`
	Order         string `json:"order"`
	Family        string `json:"family"`
	Genus         string `json:"genus"`
	Species       string `json:"species"`
}

// Match looks up a scientific name. It returns the classification, or
// (nil, true, nil) when the service definitively reports no match. Transport
// and server errors return an error and must not be treated as a miss.
func (c *Client) Match(ctx context.Context, scientificName string) (*model.Classification, bool, error) {
	memoKey := model.CacheKey(scientificName)
	if cached, found := c.memo.Get(memoKey); found {
		result := cached.(memoEntry)
		return result.classification, result.definitiveMiss, nil
	}

	requestURL := c.endpoint + "?" + url.Values{"name": {scientificName}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryNetwork).
			Build()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryNetwork).
			Context("scientific_name", scientificName).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, errors.Newf("species match returned status %d", resp.StatusCode).
			Component("taxonomy").
			Category(categoryForStatus(resp.StatusCode)).
			Context("scientific_name", scientificName).
			Context("status_code", resp.StatusCode).
			Build()
	}

	var decoded matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryFileParsing).
			Context("scientific_name", scientificName).
			Build()
	}

	if decoded.MatchType == matchTypeNone {
		c.logger.Info("no species match", "scientific_name", scientificName)
		c.memo.Set(memoKey, memoEntry{definitiveMiss: true}, gocache.DefaultExpiration)
		return nil, true, nil
	}

	classification := classificationFromMatch(&decoded)
	c.logger.Debug("species matched",
		"scientific_name", scientificName,
		"match_type", decoded.MatchType,
		"canonical_name", decoded.CanonicalName)
	c.memo.Set(memoKey, memoEntry{classification: classification}, gocache.DefaultExpiration)
	return classification, false, nil
}

type memoEntry struct {
	classification *model.Classification
	definitiveMiss bool
}

// classificationFromMatch maps the API payload onto the persisted form. A
// missing species field falls back to the canonical name, matching what the
// species tree expects.
func classificationFromMatch(m *matchResponse) *model.Classification {
	species := m.Species
	if species == "" {
		species = m.CanonicalName
	}
	return &model.Classification{
		Kingdom:       m.Kingdom,
		Phylum:        m.Phylum,
		Class:         m.Class,
		Order:         m.Order,
		Family:        m.Family,
		Genus:         m.Genus,
		Species:       species,
		GBIFKey:       m.UsageKey,
		CanonicalName: m.CanonicalName,
		MatchType:     m.MatchType,
	}
}

func categoryForStatus(statusCode int) errors.ErrorCategory {
	switch {
	case statusCode == http.StatusNotFound:
		return errors.CategoryNotFound
	case statusCode >= 500:
		return errors.CategoryNetwork
	default:
		return errors.CategoryNetwork
	}
}
