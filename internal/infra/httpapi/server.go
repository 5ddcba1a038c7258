// Package httpapi is the admin surface of the tracker: subscriber CRUD,
// on-demand pass prediction, last-heard lookup, health, and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/infra/logging"
	"iss-aprs-tracker/internal/orbit"
	"iss-aprs-tracker/internal/usecase"
)

type Server struct {
	subUC      usecase.SubscriberUseCase
	activityUC usecase.ActivityUseCase
	elements   usecase.ElementsProvider
	predictor  *orbit.Predictor
	apiKey     string
	log        *zerolog.Logger

	server *http.Server
}

func NewServer(
	port int,
	apiKey string,
	subUC usecase.SubscriberUseCase,
	activityUC usecase.ActivityUseCase,
	elements usecase.ElementsProvider,
	predictor *orbit.Predictor,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "HTTPAPI").Logger()
	s := &Server{
		subUC:      subUC,
		activityUC: activityUC,
		elements:   elements,
		predictor:  predictor,
		apiKey:     apiKey,
		log:        &compLog,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth)

		r.Route("/subscribers", func(r chi.Router) {
			r.Post("/", s.handleCreateSubscriber)
			r.Get("/", s.handleListSubscribers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSubscriber)
				r.Delete("/", s.handleDeleteSubscriber)
				r.Put("/location", s.handleSetLocation)
				r.Delete("/location", s.handleClearLocation)
				r.Put("/threshold", s.handleSetThreshold)
				r.Put("/watch", s.handleSetWatch)
				r.Delete("/watch", s.handleClearWatch)
			})
		})

		r.Get("/passes", s.handlePasses)
		r.Get("/lastheard", s.handleLastHeard)
		r.Get("/activity", s.handleActivityCount)
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("admin API listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ---- middleware ----

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.With(ctx, s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

// auth is simple Bearer token authentication, as on the base platform's
// admin API. An unset key locks the API shut rather than open.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] != s.apiKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- handlers ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if s.elements.Get().IsZero() {
		status = "degraded: no orbital elements"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

type subscriberBody struct {
	ChatID         int64   `json:"chat_id"`
	Username       string  `json:"username"`
	ThresholdHours float64 `json:"threshold_hours"`
}

func (s *Server) handleCreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var body subscriberBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sub, err := s.subUC.Register(r.Context(), body.ChatID, body.Username, body.ThresholdHours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriberDTO(sub))
}

func (s *Server) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subUC.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]subscriberDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriberDTO(sub))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSubscriber(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberDTO(sub))
}

func (s *Server) handleDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := s.subUC.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LatDeg float64 `json:"lat_deg"`
		LonDeg float64 `json:"lon_deg"`
		AltM   float64 `json:"alt_m"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sub, err := s.subUC.SetLocation(r.Context(), chi.URLParam(r, "id"), body.LatDeg, body.LonDeg, body.AltM)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberDTO(sub))
}

func (s *Server) handleClearLocation(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.ClearLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberDTO(sub))
}

func (s *Server) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hours float64 `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sub, err := s.subUC.SetThreshold(r.Context(), chi.URLParam(r, "id"), body.Hours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberDTO(sub))
}

func (s *Server) handleSetWatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Callsign string `json:"callsign"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sub, err := s.subUC.Watch(r.Context(), chi.URLParam(r, "id"), body.Callsign)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberDTO(sub))
}

func (s *Server) handleClearWatch(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.Unwatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberDTO(sub))
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "lat and lon query parameters are required", http.StatusBadRequest)
		return
	}
	alt := 0.0
	if v := r.URL.Query().Get("alt"); v != "" {
		alt, _ = strconv.ParseFloat(v, 64)
	}
	hours := 24.0
	if v := r.URL.Query().Get("hours"); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil && h > 0 && h <= 72 {
			hours = h
		}
	}

	loc, err := model.NewGroundLocation(lat, lon, alt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st := s.elements.Get()
	if st.IsZero() {
		http.Error(w, "no orbital elements loaded", http.StatusServiceUnavailable)
		return
	}

	now := time.Now().UTC()
	windows, err := s.predictor.Windows(r.Context(), st, *loc, now, now.Add(time.Duration(hours*float64(time.Hour))))
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]passDTO, 0, len(windows))
	for _, p := range windows {
		out = append(out, passDTO{
			Start:          p.Start,
			End:            p.End,
			MaxElevation:   p.MaxElevation,
			MaxElevationAt: p.MaxElevationAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"norad_id":      st.NoradID,
		"element_epoch": st.Epoch,
		"passes":        out,
	})
}

func (s *Server) handleLastHeard(w http.ResponseWriter, r *http.Request) {
	st, err := s.activityUC.LastHeard(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"callsign": st.Callsign,
		"heard_at": st.HeardAt,
		"link":     st.Link,
	})
}

func (s *Server) handleActivityCount(w http.ResponseWriter, r *http.Request) {
	hours := 24.0
	if v := r.URL.Query().Get("hours"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil || h <= 0 {
			http.Error(w, "hours must be a positive number", http.StatusBadRequest)
			return
		}
		hours = h
	}
	since := time.Now().UTC().Add(-time.Duration(hours * float64(time.Hour)))
	n, err := s.activityUC.ActivitySince(r.Context(), since)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"since": since,
		"count": n,
	})
}

// ---- DTOs and helpers ----

type subscriberDTO struct {
	ID             string     `json:"id"`
	ChatID         int64      `json:"chat_id"`
	Username       string     `json:"username,omitempty"`
	LatDeg         *float64   `json:"lat_deg,omitempty"`
	LonDeg         *float64   `json:"lon_deg,omitempty"`
	AltM           *float64   `json:"alt_m,omitempty"`
	ThresholdHours float64    `json:"threshold_hours"`
	WatchCallsign  string     `json:"watch_callsign,omitempty"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type passDTO struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	MaxElevation   float64   `json:"max_elevation"`
	MaxElevationAt time.Time `json:"max_elevation_at"`
}

func toSubscriberDTO(s *model.Subscriber) subscriberDTO {
	dto := subscriberDTO{
		ID:             s.ID,
		ChatID:         s.ChatID,
		Username:       s.Username,
		ThresholdHours: s.ThresholdHours,
		WatchCallsign:  s.WatchCallsign,
		LastNotifiedAt: s.LastNotifiedAt,
		CreatedAt:      s.CreatedAt,
	}
	if s.Location != nil {
		dto.LatDeg = &s.Location.LatDeg
		dto.LonDeg = &s.Location.LonDeg
		dto.AltM = &s.Location.AltM
	}
	return dto
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrStaleElements):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
