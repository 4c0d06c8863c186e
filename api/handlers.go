package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/internal/chart"
	"github.com/seenimoa/nivesh/internal/datasource"
	"github.com/seenimoa/nivesh/internal/llm"
	"github.com/seenimoa/nivesh/internal/store"
	"github.com/seenimoa/nivesh/internal/tools"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// ============================================================
// Request / Response types
// ============================================================

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Identifier     string `json:"identifier"`
	InvestmentType string `json:"investment_type"` // "stock" (default) or "mutual_fund"
	HorizonYears   int    `json:"horizon_years,omitempty"`
	Save           bool   `json:"save,omitempty"`
}

// AnalyzeResponse is a report plus its history ID when it was saved.
type AnalyzeResponse struct {
	*analytics.Report
	ReportID string `json:"report_id,omitempty"`
}

// ChatRequest is the body for POST /api/v1/chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatMessage represents a single chat message in history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := utils.NowIST()
	s.writeData(w, map[string]interface{}{
		"status":        "ok",
		"version":       s.version,
		"market_status": utils.MarketStatus(now),
		"time_ist":      utils.FormatDateTimeIST(now),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return
	}
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		s.writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}
	if req.InvestmentType == "" {
		req.InvestmentType = analytics.Equity.String()
	}
	if req.HorizonYears <= 0 {
		req.HorizonYears = s.cfg.Analysis.HorizonYears
	}

	report, err := s.analyzer.Analyze(r.Context(), analytics.Request{
		Identifier:   req.Identifier,
		AssetClass:   req.InvestmentType,
		HorizonYears: req.HorizonYears,
	})
	if err != nil {
		s.writeAnalysisError(w, err, req.Identifier)
		return
	}

	resp := AnalyzeResponse{Report: report}
	if req.Save {
		if s.store == nil {
			s.writeError(w, http.StatusServiceUnavailable, "report history is disabled")
			return
		}
		id, err := s.store.SaveReport(r.Context(), report)
		if err != nil {
			s.log.WithError(err).Warn("Failed to save report")
			s.writeError(w, http.StatusInternalServerError, "failed to save report")
			return
		}
		resp.ReportID = id
	}
	s.writeData(w, resp)
}

// writeAnalysisError answers with the structured error report.
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error, identifier string) {
	rep := analytics.AsErrorReport(err, identifier)
	s.writeJSON(w, analysisStatus(rep.Kind), APIResponse{Success: false, Data: rep, Error: rep.Error})
}

func analysisStatus(kind analytics.ErrorKind) int {
	switch kind {
	case analytics.KindInvalidAssetClass, analytics.KindInvalidIdentifier:
		return http.StatusBadRequest
	case analytics.KindNoData, analytics.KindInsufficientData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return
	}
	q := r.URL.Query()
	kind := q.Get("kind")
	if kind == "" {
		kind = "price"
	}
	if kind != "price" && kind != "drawdown" {
		s.writeError(w, http.StatusBadRequest, "kind must be 'price' or 'drawdown'")
		return
	}
	assetType := q.Get("type")
	if assetType == "" {
		assetType = analytics.Equity.String()
	}
	years := s.cfg.Analysis.HorizonYears
	if v := q.Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "years must be a positive integer")
			return
		}
		years = n
	}

	identifier := chi.URLParam(r, "identifier")
	id, ts, err := s.analyzer.Series(r.Context(), analytics.Request{
		Identifier:   identifier,
		AssetClass:   assetType,
		HorizonYears: years,
	})
	if err != nil {
		s.writeAnalysisError(w, err, identifier)
		return
	}

	var img []byte
	if kind == "drawdown" {
		img, err = chart.RenderDrawdown(ts, id+" drawdown (%)")
	} else {
		img, err = chart.RenderSeries(ts, id)
	}
	if errors.Is(err, chart.ErrTooFewPoints) {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("not enough data to chart '%s'", id))
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("identifier", id).Warn("Chart rendering failed")
		s.writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(img) //nolint:errcheck
}

func (s *Server) handleStockInfo(w http.ResponseWriter, r *http.Request) {
	res, err := s.toolkit.StockInfo(r.Context(), chi.URLParam(r, "symbol"))
	s.respond(w, res, err)
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	res, err := s.toolkit.StockHistory(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("period"))
	s.respond(w, res, err)
}

func (s *Server) handleStockFinancials(w http.ResponseWriter, r *http.Request) {
	res, err := s.toolkit.StockFinancials(r.Context(), chi.URLParam(r, "symbol"))
	s.respond(w, res, err)
}

func (s *Server) handleSchemeSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.toolkit.SearchMutualFund(r.Context(), r.URL.Query().Get("q"))
	s.respond(w, res, err)
}

func (s *Server) handleSchemeDetails(w http.ResponseWriter, r *http.Request) {
	res, err := s.toolkit.MFDetails(r.Context(), chi.URLParam(r, "code"))
	s.respond(w, res, err)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	res, err := s.toolkit.SearchFinancialNews(r.Context(), r.URL.Query().Get("q"))
	s.respond(w, res, err)
}

// respond writes a toolkit result or maps its error to a status code.
func (s *Server) respond(w http.ResponseWriter, data interface{}, err error) {
	if err != nil {
		s.writeError(w, toolStatus(err), err.Error())
		return
	}
	s.writeData(w, data)
}

func toolStatus(err error) int {
	switch {
	case errors.Is(err, tools.ErrInvalidInput):
		return http.StatusBadRequest
	case datasource.IsNotFound(err), errors.Is(err, tools.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, tools.ErrUnavailable), errors.Is(err, datasource.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "report history is disabled")
		return
	}
	q := r.URL.Query()
	f := store.Filter{Identifier: q.Get("identifier"), AssetClass: q.Get("type")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}
	records, err := s.store.ListReports(r.Context(), f)
	if err != nil {
		s.log.WithError(err).Warn("Failed to list reports")
		s.writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	s.writeData(w, records)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "report history is disabled")
		return
	}
	rec, err := s.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.log.WithError(err).Warn("Failed to load report")
		s.writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	s.writeData(w, rec)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		s.writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	var history []llm.Message
	for _, m := range req.History {
		switch m.Role {
		case "user":
			history = append(history, llm.UserMessage(m.Content))
		case "assistant":
			history = append(history, llm.AssistantMessage(m.Content))
		}
	}

	result, err := s.assistant.Ask(r.Context(), req.Message, history)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeData(w, map[string]interface{}{
		"agent":      result.AgentName,
		"content":    result.Content,
		"tokens":     result.Tokens,
		"tool_calls": result.ToolCalls,
	})
}
