// Package qdrant provides a library store backed by a Qdrant server
// over its REST API. Query text is embedded client-side through the
// configured embedding service; the four collections are created on
// connect when missing.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.LibraryStore = (*Store)(nil)

// keyField is the payload field holding the caller's record key.
// Qdrant point IDs must be UUIDs, so keys are hashed into UUIDv5 point
// IDs and the original key travels in the payload.
const keyField = "_key"

// keyNamespace salts the key-to-point-ID hash.
var keyNamespace = uuid.MustParse("8f3c6a2e-9d41-4a6b-b0cf-3f1d2f5a7c19")

// Default configuration values.
const (
	DefaultTimeout           = 15 * time.Second
	DefaultRequestsPerSecond = 20.0
	DefaultBurst             = 10
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant base URL, e.g. http://localhost:6333.
	URL string

	// APIKey authenticates requests; empty for unsecured servers.
	APIKey string

	// CollectionPrefix namespaces the four collections on a shared
	// server.
	CollectionPrefix string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration

	// RequestsPerSecond caps the sustained request rate (default: 20).
	RequestsPerSecond float64

	// Burst is the rate limiter burst size (default: 10).
	Burst int

	// ServerSideFilters declares whether the server applies payload
	// filters inside similarity queries. Older deployments silently
	// no-op them; setting this false makes the searchers post-filter
	// client-side instead of trusting the server.
	ServerSideFilters bool
}

// Store is a Qdrant-backed implementation of driven.LibraryStore.
type Store struct {
	client        *http.Client
	limiter       *rate.Limiter
	url           string
	apiKey        string
	prefix        string
	embedder      driven.EmbeddingService
	serverFilters bool
}

// Connect probes the server, ensures the four collections exist and
// returns a ready store. The caller owns the connection and must Close
// it on every exit path.
func Connect(ctx context.Context, cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant URL is required", domain.ErrInvalidInput)
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}

	s := &Store{
		client:        &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		url:           cfg.URL,
		apiKey:        cfg.APIKey,
		prefix:        cfg.CollectionPrefix,
		embedder:      embedder,
		serverFilters: cfg.ServerSideFilters,
	}

	var info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	}
	if err := s.getJSON(ctx, s.url+"/", &info); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	logger.Info("Connected to %s %s", info.Title, info.Version)

	for _, collection := range []domain.Collection{
		domain.CollectionWorks,
		domain.CollectionDocuments,
		domain.CollectionChunks,
		domain.CollectionSummaries,
	} {
		if err := s.ensureCollection(ctx, collection); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ensureCollection creates the collection when missing. Qdrant returns
// 200 for an existing collection with the same schema.
func (s *Store) ensureCollection(ctx context.Context, collection domain.Collection) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.embedder.Dimensions(),
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(ctx, s.collectionURL(collection), body); err != nil {
		return fmt.Errorf("ensure collection %s: %w", collection, err)
	}
	return nil
}

// SimilaritySearch embeds the query and runs a point search, applying
// the filter server-side only when the capability is declared.
func (s *Store) SimilaritySearch(
	ctx context.Context, collection domain.Collection, query string, limit int, filter *driven.Filter,
) ([]driven.Record, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := map[string]any{
		"vector":       vec,
		"limit":        limit,
		"with_payload": true,
	}
	if s.serverFilters && !filter.IsZero() {
		req["filter"] = qdrantFilter(filter)
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL(collection)+"/points/search", req, &resp); err != nil {
		return nil, err
	}

	recs := make([]driven.Record, 0, len(resp.Result))
	for _, hit := range resp.Result {
		recs = append(recs, driven.Record{
			Key:    payloadKey(hit.Payload),
			Score:  hit.Score,
			Fields: stripKey(hit.Payload),
		})
	}
	return recs, nil
}

// FetchByKey retrieves one point through its derived point ID.
func (s *Store) FetchByKey(ctx context.Context, collection domain.Collection, key string) (*driven.Record, error) {
	req := map[string]any{
		"ids":          []string{pointID(key)},
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL(collection)+"/points", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return &driven.Record{Key: key, Fields: stripKey(resp.Result[0].Payload)}, nil
}

// FetchAll scrolls the collection in point order.
func (s *Store) FetchAll(ctx context.Context, collection domain.Collection, limit int) ([]driven.Record, error) {
	var recs []driven.Record
	var offset any

	for {
		page := 256
		if limit > 0 && limit-len(recs) < page {
			page = limit - len(recs)
		}
		req := map[string]any{
			"limit":        page,
			"with_payload": true,
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.postJSON(ctx, s.collectionURL(collection)+"/points/scroll", req, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Result.Points {
			recs = append(recs, driven.Record{
				Key:    payloadKey(p.Payload),
				Fields: stripKey(p.Payload),
			})
		}
		offset = resp.Result.NextPageOffset
		if offset == nil || (limit > 0 && len(recs) >= limit) {
			break
		}
	}
	return recs, nil
}

// Count returns the exact point count.
func (s *Store) Count(ctx context.Context, collection domain.Collection) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL(collection)+"/points/count", map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Insert upserts one point keyed by the record key. A pre-existing key
// reports domain.ErrAlreadyExists. Two inserts racing on the same key
// converge on the same point ID, so the loser overwrites nothing and no
// duplicate can appear.
func (s *Store) Insert(ctx context.Context, collection domain.Collection, rec driven.Record) (string, error) {
	if rec.Key == "" {
		rec.Key = uuid.NewString()
	}

	if _, err := s.FetchByKey(ctx, collection, rec.Key); err == nil {
		return "", fmt.Errorf("record %s: %w", rec.Key, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	text := embeddableText(collection, rec.Fields)
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed record %s: %w", rec.Key, err)
	}

	payload := make(map[string]any, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		payload[k] = v
	}
	payload[keyField] = rec.Key

	req := map[string]any{
		"points": []map[string]any{{
			"id":      pointID(rec.Key),
			"vector":  vec,
			"payload": payload,
		}},
	}
	if err := s.putJSON(ctx, s.collectionURL(collection)+"/points?wait=true", req); err != nil {
		return "", err
	}
	return rec.Key, nil
}

// Capabilities reports the configured filter support.
func (s *Store) Capabilities(_ context.Context) (driven.StoreCapabilities, error) {
	return driven.StoreCapabilities{ServerSideFilters: s.serverFilters}, nil
}

// Close releases the HTTP client's idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// embeddableText picks the text worth embedding per collection.
func embeddableText(collection domain.Collection, fields map[string]any) string {
	get := func(key string) string {
		v, _ := fields[key].(string)
		return v
	}
	switch collection {
	case domain.CollectionChunks:
		return get(domain.FieldText)
	case domain.CollectionSummaries:
		return get(domain.FieldSummaryText)
	case domain.CollectionWorks:
		return get(domain.FieldTitle) + " " + get(domain.FieldAuthor)
	default:
		return get(domain.FieldWorkTitle) + " " + get(domain.FieldWorkAuthor)
	}
}

// qdrantFilter translates the store filter into a must clause.
func qdrantFilter(filter *driven.Filter) map[string]any {
	var must []map[string]any
	add := func(field, value string) {
		if value != "" {
			must = append(must, map[string]any{
				"key":   field,
				"match": map[string]any{"value": value},
			})
		}
	}
	add(domain.FieldWorkTitle, filter.WorkTitle)
	add(domain.FieldWorkAuthor, filter.WorkAuthor)
	add(domain.FieldDocumentID, filter.DocumentID)
	return map[string]any{"must": must}
}

// pointID derives the deterministic UUIDv5 point ID for a record key.
func pointID(key string) string {
	return uuid.NewSHA1(keyNamespace, []byte(key)).String()
}

func payloadKey(payload map[string]any) string {
	v, _ := payload[keyField].(string)
	return v
}

func stripKey(payload map[string]any) map[string]any {
	fields := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == keyField {
			continue
		}
		fields[k] = v
	}
	return fields
}

func (s *Store) getJSON(ctx context.Context, url string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return s.do(req, out)
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, nil)
}

func (s *Store) do(req *http.Request, out any) error {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s: %s: %s", req.Method, req.URL.Path, resp.Status, string(body))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Store) collectionURL(collection domain.Collection) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.prefix, collection)
}
