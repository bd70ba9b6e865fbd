package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/parcelio/fleet-core/internal/apperrors"
	"github.com/parcelio/fleet-core/internal/auth"
	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/models"
	"github.com/parcelio/fleet-core/internal/util"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}
	if loginReq.Email == "" || loginReq.Password == "" {
		util.WriteError(w, apperrors.Validation("email and password are required"))
		return
	}

	user, err := h.userCollection.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}
	if !user.IsActive {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).Warn("failed to update last login")
	}

	util.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		util.WriteError(w, apperrors.Validation("invalid JSON body"))
		return
	}

	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		util.WriteError(w, apperrors.Validation(err.Error()))
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		util.WriteError(w, apperrors.Validation(err.Error()))
		return
	}
	if !models.IsValidRole(registerReq.Role) {
		util.WriteError(w, apperrors.Validation("invalid role"))
		return
	}
	if registerReq.Role != models.RoleCustomer && registerReq.OrganizationID == "" {
		util.WriteError(w, apperrors.Validation("organization_id is required for organization roles"))
		return
	}

	if _, err := h.userCollection.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		util.WriteError(w, apperrors.Validation("email already exists"))
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		util.WriteError(w, apperrors.FetchFailed(err))
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}

	user := models.User{
		ID:             primitive.NewObjectID(),
		Email:          registerReq.Email,
		PasswordHash:   passwordHash,
		Role:           registerReq.Role,
		OrganizationID: registerReq.OrganizationID,
		FirstName:      registerReq.FirstName,
		LastName:       registerReq.LastName,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		util.WriteError(w, apperrors.CreationFailed(err))
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		util.WriteError(w, apperrors.OperationFailed(err))
		return
	}

	util.WriteJSON(w, http.StatusCreated, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		util.WriteError(w, apperrors.Unauthorized())
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.WriteError(w, apperrors.NotFound("user"))
			return
		}
		util.WriteError(w, apperrors.FetchFailed(err))
		return
	}
	util.WriteJSON(w, http.StatusOK, user)
}
