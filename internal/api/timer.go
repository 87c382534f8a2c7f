package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/timeinput"
)

// ─── Timer Controls (/api/timer/*) ──────────────────────────────────────────

type startRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.session.Submit(req.Input)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Pause())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Resume()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Stop())
}

// ─── Input (/api/input/*) ───────────────────────────────────────────────────

type textRequest struct {
	Text string `json:"text"`
}

type filterResponse struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

type parseResponse struct {
	Seconds   int    `json:"seconds"`
	Formatted string `json:"formatted"`
	Format    string `json:"format"`
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := s.session.Filter(req.Text)
	writeJSON(w, http.StatusOK, filterResponse{
		Text:   text,
		Format: timeinput.ClassifyFormat(text).String(),
	})
}

// handleParse is read-only: it reports what a commit of text would start
// without touching the session.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seconds := timeinput.ParseDuration(req.Text)
	writeJSON(w, http.StatusOK, parseResponse{
		Seconds:   seconds,
		Formatted: timeinput.FormatSeconds(seconds),
		Format:    timeinput.ClassifyFormat(req.Text).String(),
	})
}

// ─── Settings (/api/settings) ───────────────────────────────────────────────

type settingsBody struct {
	LastInput      *string `json:"last_input,omitempty"`
	AlertSoundFile *string `json:"alert_sound_file,omitempty"`
}

type settingsResponse struct {
	LastInput      string `json:"last_input"`
	AlertSoundFile string `json:"alert_sound_file"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.readSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsBody
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.LastInput != nil {
		if _, err := s.session.SetInput(*req.LastInput); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if req.AlertSoundFile != nil {
		if err := s.settings.SetCustomAlertSoundFile(*req.AlertSoundFile); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	resp, err := s.readSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) readSettings() (settingsResponse, error) {
	last, err := s.settings.LastTimerInput()
	if err != nil {
		return settingsResponse{}, err
	}
	sound, err := s.settings.CustomAlertSoundFile()
	if err != nil {
		return settingsResponse{}, err
	}
	return settingsResponse{LastInput: last, AlertSoundFile: sound}, nil
}

// ─── Alert History (/api/alerts) ────────────────────────────────────────────

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	alerts, err := s.history.ListAlerts(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
