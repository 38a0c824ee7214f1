package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/insights"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type datasetResponse struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	YearMin  int    `json:"yearMin"`
	YearMax  int    `json:"yearMax"`
	RowsRead int    `json:"rowsRead"`
	Records  int    `json:"records"`
	Excluded int    `json:"excluded"`
}

type aggregateResponse struct {
	Fn      string          `json:"fn"`
	Group   string          `json:"group"`
	Value   string          `json:"value,omitempty"`
	Entries []metrics.Entry `json:"entries"`
}

type binResponse struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type binsResponse struct {
	Value string         `json:"value"`
	Bins  []binResponse  `json:"bins"`
	Means metrics.Result `json:"means"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.engine.Dataset()
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toDatasetResponse(ds))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, err := insights.Build(s.engine, chi.URLParam(r, "view"))
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fnName := q.Get("fn")
	if fnName == "" {
		fnName = string(metrics.FuncSum)
	}
	fn, ok := metrics.ParseFunc(fnName)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("unknown aggregation %q", fnName))
		return
	}
	group, err := dataset.ParseField(q.Get("group"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "group: "+err.Error())
		return
	}
	var value dataset.Field
	if fn != metrics.FuncCount {
		if value, err = dataset.ParseField(q.Get("value")); err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "value: "+err.Error())
			return
		}
	}
	top := -1
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "top must be a non-negative integer")
			return
		}
		top = n
	}

	res, err := s.engine.Aggregate(fn, group, value)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	entries := res.Entries()
	if top >= 0 {
		entries = metrics.TopN(res, top)
	}
	s.respondJSON(w, http.StatusOK, aggregateResponse{Fn: string(fn), Group: string(group), Value: string(value), Entries: entries})
}

func (s *Server) handleBins(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")
	if raw == "" {
		raw = string(dataset.FieldTotalSales)
	}
	value, err := dataset.ParseField(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "value: "+err.Error())
		return
	}
	bins, err := s.engine.ScoreBins()
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	means, err := s.engine.MeanByBin(value)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	counts := metrics.CountByBin(bins)
	resp := binsResponse{Value: string(value), Means: means, Bins: make([]binResponse, 0, len(bins))}
	for _, b := range bins {
		n, _ := counts.Get(b.Label)
		resp.Bins = append(resp.Bins, binResponse{Label: b.Label, Lower: b.Lower, Upper: b.Upper, Count: int(n)})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.engine.Reload()
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	s.logger.Printf("reloaded %s: %d records", ds.Source(), ds.Len())
	s.respondJSON(w, http.StatusOK, toDatasetResponse(ds))
}

func toDatasetResponse(ds *dataset.Dataset) datasetResponse {
	lo, hi := ds.YearRange()
	return datasetResponse{
		ID:       ds.ID(),
		Source:   ds.Source(),
		YearMin:  lo,
		YearMax:  hi,
		RowsRead: ds.RowsRead(),
		Records:  ds.Len(),
		Excluded: ds.Excluded(),
	}
}

// respondQueryError maps engine and view errors to status codes.
func (s *Server) respondQueryError(w http.ResponseWriter, err error) {
	var fieldErr *metrics.FieldError
	var loadErr *dataset.DataLoadError
	switch {
	case errors.Is(err, insights.ErrUnknownView):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &fieldErr), errors.Is(err, metrics.ErrUnknownFunc):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, metrics.ErrEmptyResult), errors.Is(err, metrics.ErrDivisionByZero):
		s.respondError(w, http.StatusUnprocessableEntity, "EMPTY_RESULT", err.Error())
	case errors.As(err, &loadErr):
		s.logger.Printf("dataset load failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "LOAD_ERROR", err.Error())
	default:
		s.logger.Printf("query failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Query failed")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
