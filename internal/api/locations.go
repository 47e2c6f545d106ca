package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/molad-api/internal/database"
	"github.com/zapponejosh/molad-api/internal/logger"
)

// CreateLocationRequest is the body of POST /api/v1/locations.
type CreateLocationRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	TimeZone  string   `json:"timezone"`
	Diaspora  *bool    `json:"diaspora,omitempty"`
}

// ListLocations handles GET /api/v1/locations
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.db.ListLocations(r.Context())
	if err != nil {
		h.writeErr(w, r, "list locations", err)
		return
	}

	WriteSuccess(w, locations)
}

// CreateLocation handles POST /api/v1/locations
func (h *Handlers) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		WriteBadRequest(w, "latitude and longitude are required")
		return
	}

	loc := &database.Location{
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		TimeZone:  req.TimeZone,
		Diaspora:  h.cfg.Diaspora,
	}
	if req.Diaspora != nil {
		loc.Diaspora = *req.Diaspora
	}

	if err := h.db.CreateLocation(r.Context(), loc); err != nil {
		h.writeErr(w, r, "create location", err)
		return
	}

	logger.Info(r.Context(), "location created",
		slog.Int64("location_id", loc.ID),
		slog.String("location", loc.Name),
	)
	WriteCreated(w, loc)
}

// GetLocation handles GET /api/v1/locations/{id}
func (h *Handlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.pathLocation(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, loc)
}

// DeleteLocation handles DELETE /api/v1/locations/{id}
func (h *Handlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteLocation(r.Context(), id); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("Location %d not found", id))
			return
		}
		h.writeErr(w, r, "delete location", err)
		return
	}

	logger.Info(r.Context(), "location deleted", slog.Int64("location_id", id))
	WriteSuccess(w, map[string]int64{"deleted": id})
}

// GetLocationFacts handles GET /api/v1/locations/{id}/facts
func (h *Handlers) GetLocationFacts(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.pathLocation(w, r)
	if !ok {
		return
	}

	cal := loc.Calendar()
	at, err := h.momentFromQuery(r.URL.Query().Get("at"), cal)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	facts, err := h.resolver.Facts(r.Context(), at, cal)
	if err != nil {
		h.writeErr(w, r, "compute facts", err)
		return
	}

	WriteSuccess(w, facts)
}

// GetLocationSnapshot handles GET /api/v1/locations/{id}/snapshot
func (h *Handlers) GetLocationSnapshot(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.pathLocation(w, r)
	if !ok {
		return
	}

	snap, err := h.db.LatestSnapshot(r.Context(), loc.ID)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("No snapshot for location %d yet", loc.ID))
			return
		}
		h.writeErr(w, r, "load snapshot", err)
		return
	}

	WriteSuccess(w, snap)
}

// RefreshLocation handles POST /api/v1/locations/{id}/refresh
func (h *Handlers) RefreshLocation(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.pathLocation(w, r)
	if !ok {
		return
	}

	snap, err := h.refresher.RefreshLocation(r.Context(), loc)
	if err != nil {
		h.writeErr(w, r, "refresh location", err)
		return
	}

	WriteSuccess(w, snap)
}

func (h *Handlers) pathLocation(w http.ResponseWriter, r *http.Request) (*database.Location, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	loc, err := h.db.GetLocation(r.Context(), id)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("Location %d not found", id))
			return nil, false
		}
		h.writeErr(w, r, "load location", err)
		return nil, false
	}
	return loc, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		WriteBadRequest(w, fmt.Sprintf("Invalid location id: %q", raw))
		return 0, false
	}
	return id, true
}
