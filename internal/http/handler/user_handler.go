package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

type registerUserRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Role        string   `json:"role" validate:"required,oneof=solicitante administracion comercial gestor"`
	Areas       []string `json:"areas"`
}

// Me godoc
// @Summary Get the authenticated caller's identity
// @Tags Users
// @Produce json
// @Success 200 {object} auth.UserContext
// @Failure 401 {object} domain.APIError
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, auth.MustFromContext(r.Context()))
}

// Register godoc
// @Summary Register a user record
// @Tags Users
// @Accept json
// @Produce json
// @Param user body registerUserRequest true "User"
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Router /users [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.DisplayName, domain.UserRole(req.Role), req.Areas)
	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// ListByRole godoc
// @Summary List active users holding a role
// @Tags Users
// @Produce json
// @Param role query string true "Role" Enums(solicitante, administracion, comercial, gestor)
// @Success 200 {array} domain.User
// @Failure 400 {object} domain.APIError
// @Router /users [get]
func (h *UserHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role := domain.UserRole(r.URL.Query().Get("role"))
	users, err := h.userService.ListByRole(r.Context(), role)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
