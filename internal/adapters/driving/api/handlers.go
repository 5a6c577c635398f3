package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// searchResponse is the /search payload.
type searchResponse struct {
	Query    string         `json:"query"`
	Mode     string         `json:"mode"`
	Fallback bool           `json:"fallback"`
	Groups   []sectionGroup `json:"groups,omitempty"`
	Chunks   []scoredChunk  `json:"chunks,omitempty"`
}

type sectionGroup struct {
	SectionPath string        `json:"section_path"`
	WorkTitle   string        `json:"work_title"`
	WorkAuthor  string        `json:"work_author"`
	Summary     string        `json:"summary,omitempty"`
	Score       float64       `json:"score"`
	Chunks      []scoredChunk `json:"chunks"`
}

type scoredChunk struct {
	ID          string  `json:"id"`
	DocumentID  string  `json:"document_id"`
	WorkTitle   string  `json:"work_title"`
	WorkAuthor  string  `json:"work_author"`
	SectionPath string  `json:"section_path,omitempty"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	query := q.Get("q")
	if query == "" {
		sendError(w, http.StatusBadRequest, errCodeInvalidRequest, "q is required")
		return
	}

	opts := domain.RetrieveOptions{Mode: domain.QueryModeAuto}
	switch mode := q.Get("mode"); mode {
	case "", "auto":
	case "flat":
		opts.Mode = domain.QueryModeFlat
	case "hierarchical":
		opts.Mode = domain.QueryModeHierarchical
	default:
		sendError(w, http.StatusBadRequest, errCodeInvalidRequest, "mode must be auto, flat or hierarchical")
		return
	}

	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		sendError(w, http.StatusBadRequest, errCodeInvalidRequest, "limit must be a non-negative integer")
		return
	}
	if opts.SectionsLimit, err = intParam(q.Get("sections_limit")); err != nil {
		sendError(w, http.StatusBadRequest, errCodeInvalidRequest, "sections_limit must be a non-negative integer")
		return
	}

	title, author := q.Get("work_title"), q.Get("work_author")
	if title != "" || author != "" {
		opts.Filter = &domain.WorkRef{Title: title, Author: author}
	}

	result, err := s.ports.Retrieval.Retrieve(req.Context(), query, opts)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	resp := searchResponse{
		Query:    result.Query,
		Mode:     string(result.Mode),
		Fallback: result.Fallback,
		Chunks:   mapChunks(result.Chunks),
	}
	for _, g := range result.Groups {
		resp.Groups = append(resp.Groups, sectionGroup{
			SectionPath: string(g.SectionPath),
			WorkTitle:   g.Work.Title,
			WorkAuthor:  g.Work.Author,
			Summary:     g.SummaryText,
			Score:       g.Score,
			Chunks:      mapChunks(g.Chunks),
		})
	}
	sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWorks(w http.ResponseWriter, req *http.Request) {
	works, err := s.ports.Catalog.ListWorks(req.Context())
	if err != nil {
		sendServiceError(w, err)
		return
	}
	if works == nil {
		works = []domain.WorkCount{}
	}
	sendJSON(w, http.StatusOK, works)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func sendServiceError(w http.ResponseWriter, err error) {
	logger.Warn("API request failed: %v", err)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		sendError(w, http.StatusBadRequest, errCodeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrBackendUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		sendError(w, http.StatusServiceUnavailable, errCodeServiceUnavailable, err.Error())
	default:
		sendError(w, http.StatusInternalServerError, errCodeInternalError, err.Error())
	}
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

func mapChunks(chunks []domain.ScoredChunk) []scoredChunk {
	out := make([]scoredChunk, 0, len(chunks))
	for _, sc := range chunks {
		out = append(out, scoredChunk{
			ID:          sc.Chunk.ID,
			DocumentID:  sc.Chunk.DocumentID,
			WorkTitle:   sc.Chunk.Work.Title,
			WorkAuthor:  sc.Chunk.Work.Author,
			SectionPath: string(sc.Chunk.SectionPath),
			Text:        sc.Chunk.Text,
			Score:       sc.Score,
		})
	}
	return out
}
