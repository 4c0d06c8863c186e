package api

import (
	"context"
	"net/http"
	"time"

	"github.com/seenimoa/nivesh/internal/config"
)

const pingTimeout = 3 * time.Second

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config config.Config `json:"config"`
}

// StatusResponse describes the running service and its collaborators.
type StatusResponse struct {
	Version string             `json:"version"`
	LLM     LLMStatus          `json:"llm"`
	Storage StorageStatus      `json:"storage"`
	Keys    []config.KeyStatus `json:"keys"`
}

// LLMStatus reports whether the chat model is reachable.
type LLMStatus struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// StorageStatus reports whether report history is enabled.
type StorageStatus struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// handleGetConfig returns the running configuration with secrets masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, ConfigResponse{Config: s.cfg.Redacted()})
}

// handleGetConfigKeys returns the status of all API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, config.CheckAPIKeys(s.cfg))
}

// handleStatus checks the LLM backend and reports optional features.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{
		Version: s.version,
		LLM:     LLMStatus{Provider: s.cfg.LLM.Provider, Model: s.cfg.LLM.Model},
		Keys:    config.CheckAPIKeys(s.cfg),
	}
	if s.store != nil {
		status.Storage = StorageStatus{Enabled: true, Path: s.cfg.Storage.Path}
	}

	if s.llm == nil {
		status.LLM.Error = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := s.llm.Ping(ctx); err != nil {
			status.LLM.Error = err.Error()
		} else {
			status.LLM.Reachable = true
		}
	}
	s.writeData(w, status)
}
