package adaptor

import (
	"encoding/json"
	"net/http"

	"activity-booking/internal/dto/request"
	"activity-booking/internal/usecase"
	"activity-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	service usecase.ActivityService
	log     *zap.Logger
}

func NewActivityHandler(service usecase.ActivityService, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		log:     log.With(zap.String("handler", "activity")),
	}
}

// CreateActivity handles POST /api/activities (protected, company scope)
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), actorID, actorRole, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create activity")
		return
	}

	utils.ResponseCreated(w, "success", activity)
}

// UpdateActivity handles PUT /api/activities/{id} (protected)
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid activity ID", nil)
		return
	}

	var req request.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	activity, err := h.service.UpdateActivity(r.Context(), actorID, actorRole, activityID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update activity")
		return
	}

	utils.ResponseSuccess(w, "success", activity)
}

// ArchiveActivity handles DELETE /api/activities/{id} (protected)
func (h *ActivityHandler) ArchiveActivity(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	activityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid activity ID", nil)
		return
	}

	if err := h.service.ArchiveActivity(r.Context(), actorID, actorRole, activityID); err != nil {
		handleServiceError(h.log, w, err, "archive activity")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// GetActivity handles GET /api/activities/{id}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	activityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid activity ID", nil)
		return
	}

	activity, err := h.service.GetActivity(r.Context(), activityID)
	if err != nil {
		handleServiceError(h.log, w, err, "get activity")
		return
	}

	utils.ResponseSuccess(w, "success", activity)
}

// ListPublished handles GET /api/activities
func (h *ActivityHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchActivityRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
		Search: query.Get("search"),
	}

	activities, err := h.service.ListPublished(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "list activities")
		return
	}

	utils.ResponseSuccess(w, "success", activities)
}

// ListScoped handles GET /api/manage/activities (protected)
func (h *ActivityHandler) ListScoped(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	activities, err := h.service.ListScoped(r.Context(), actorID, actorRole, req)
	if err != nil {
		handleServiceError(h.log, w, err, "list scoped activities")
		return
	}

	utils.ResponseSuccess(w, "success", activities)
}
