package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"apptlog/internal/appointment"
	"apptlog/internal/config"
	"apptlog/internal/ics"
	appLog "apptlog/internal/log"
	"apptlog/internal/model"
)

// Lister reads back the appointment log.
type Lister interface {
	ReadAll(loc *time.Location) ([]model.Appointment, error)
}

// Server exposes the submit operation and read-only views of the log over HTTP.
type Server struct {
	cfg       *config.Config
	submitter *appointment.Submitter
	lister    Lister
	loc       *time.Location
	mux       *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, submitter *appointment.Submitter, lister Lister, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:       cfg,
		submitter: submitter,
		lister:    lister,
		loc:       loc,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
	}
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password is treated as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="apptlog", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/appointments", s.handleAppointments)
	s.mux.HandleFunc("/api/appointments.ics", s.handleCalendar)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// submitRequest is the JSON body of POST /api/appointments.
// A null or missing weekday means no day was selected.
type submitRequest struct {
	Weekday  *int   `json:"weekday"`
	Time     string `json:"time"`
	Meridiem string `json:"meridiem"`
	Reason   string `json:"reason"`
}

// appointmentDTO is the JSON view of a log row.
type appointmentDTO struct {
	Date   string `json:"date"`
	Day    string `json:"day"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

func toDTO(rec model.Appointment) appointmentDTO {
	return appointmentDTO{
		Date:   rec.Date.Format(model.DateLayout),
		Day:    rec.Day,
		Time:   rec.Time,
		Reason: rec.Reason,
	}
}

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSubmit is the HTTP form of submit(weekday, time, meridiem, reason).
//
//   - 201: recorded; body is the record
//   - 204: no weekday selected; nothing recorded
//   - 422: invalid time; body carries the user-facing message
//   - 400: malformed body or out-of-range fields
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	in := appointment.Input{
		Weekday:  appointment.NoWeekday,
		TimeText: req.Time,
		Meridiem: appointment.Meridiem(req.Meridiem),
		Reason:   req.Reason,
	}
	if req.Weekday != nil {
		in.Weekday = appointment.Weekday(*req.Weekday)
	}

	rec, err := s.submitter.Submit(in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toDTO(rec))
	case errors.Is(err, appointment.ErrNoWeekdaySelected):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, appointment.ErrInvalidTime):
		writeError(w, http.StatusUnprocessableEntity, appointment.Message(err))
	case errors.Is(err, appointment.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, appointment.Message(err))
	default:
		appLog.Error("api submit: store failed", err)
		writeError(w, http.StatusInternalServerError, "failed to record appointment")
	}
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	records, err := s.lister.ReadAll(s.loc)
	if err != nil {
		appLog.Error("api list: read failed", err)
		writeError(w, http.StatusInternalServerError, "failed to read appointments")
		return
	}

	dtos := make([]appointmentDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	records, err := s.lister.ReadAll(s.loc)
	if err != nil {
		appLog.Error("api calendar: read failed", err)
		writeError(w, http.StatusInternalServerError, "failed to read appointments")
		return
	}

	body := ics.Export(records, ics.ExportOptions{
		Location: s.loc,
		Duration: s.cfg.EventDuration(),
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
