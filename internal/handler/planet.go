package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/planetsapi/planets/internal/auth"
	"github.com/planetsapi/planets/internal/handler/dto"
	"github.com/planetsapi/planets/internal/middleware"
	"github.com/planetsapi/planets/internal/service"
)

// PlanetHandler handles HTTP requests for planet operations.
type PlanetHandler struct {
	planets *service.PlanetService
	logger  *slog.Logger
}

// NewPlanetHandler creates a new PlanetHandler.
func NewPlanetHandler(planets *service.PlanetService, logger *slog.Logger) *PlanetHandler {
	return &PlanetHandler{planets: planets, logger: logger}
}

// List handles GET /planets.
func (h *PlanetHandler) List(w http.ResponseWriter, r *http.Request) {
	planets, err := h.planets.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPlanetListResponse(planets))
}

// Get handles GET /planet_details/{id}. Non-numeric ids are treated as absent.
func (h *PlanetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 0 {
		writePlanetNotFound(w)
		return
	}

	planet, err := h.planets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanetNotFound) {
			writePlanetNotFound(w)
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPlanetResponse(planet))
}

// Add handles POST /add_planet. Requires middleware.RequireBearer.
func (h *PlanetHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPlanetRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	planet, err := h.planets.Add(r.Context(), service.AddPlanetInput{
		Name:     req.Name,
		Type:     req.Type,
		HomeStar: req.HomeStar,
		Mass:     string(req.Mass),
		Radius:   string(req.Radius),
		Distance: string(req.Distance),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanetExists):
			writeError(w, http.StatusConflict, "PLANET_EXISTS", "There is already a planet by that name")
		case writeFieldError(w, err):
		default:
			h.internalError(w, r, err)
		}
		return
	}

	h.logger.Info("planet_created",
		slog.Int64("planet_id", planet.ID),
		slog.String("planet_name", planet.Name),
		slog.String("subject", auth.SubjectFromContext(r.Context())),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: "You added a planet"})
}

func (h *PlanetHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal error",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func writePlanetNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "PLANET_NOT_FOUND", "That planet does not exist")
}
