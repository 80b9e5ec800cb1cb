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

type CompanyHandler struct {
	service usecase.CompanyService
	log     *zap.Logger
}

func NewCompanyHandler(service usecase.CompanyService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		log:     log.With(zap.String("handler", "company")),
	}
}

// CreateCompany handles POST /api/companies (protected)
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	actorID, _, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	company, err := h.service.CreateCompany(r.Context(), actorID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create company")
		return
	}

	utils.ResponseCreated(w, "success", company)
}

// GetCompany handles GET /api/companies/{id}
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid company ID", nil)
		return
	}

	company, err := h.service.GetCompany(r.Context(), companyID)
	if err != nil {
		handleServiceError(h.log, w, err, "get company")
		return
	}

	utils.ResponseSuccess(w, "success", company)
}

// UpdateCompany handles PUT /api/companies/{id} (protected)
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid company ID", nil)
		return
	}

	var req request.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	company, err := h.service.UpdateCompany(r.Context(), actorID, actorRole, companyID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update company")
		return
	}

	utils.ResponseSuccess(w, "success", company)
}

// AddMember handles POST /api/companies/{id}/members (protected)
func (h *CompanyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid company ID", nil)
		return
	}

	var req request.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	member, err := h.service.AddMember(r.Context(), actorID, actorRole, companyID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "add member")
		return
	}

	utils.ResponseCreated(w, "success", member)
}

// RemoveMember handles DELETE /api/companies/{id}/members/{userID} (protected)
func (h *CompanyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid company ID", nil)
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.service.RemoveMember(r.Context(), actorID, actorRole, companyID, memberID); err != nil {
		handleServiceError(h.log, w, err, "remove member")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ListMembers handles GET /api/companies/{id}/members (protected)
func (h *CompanyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid company ID", nil)
		return
	}

	members, err := h.service.ListMembers(r.Context(), actorID, actorRole, companyID)
	if err != nil {
		handleServiceError(h.log, w, err, "list members")
		return
	}

	utils.ResponseSuccess(w, "success", members)
}
