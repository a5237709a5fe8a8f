package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/internal/application"
	"github.com/oksasatya/users-service/internal/interface/middleware"
	"github.com/oksasatya/users-service/pkg/response"
	"github.com/oksasatya/users-service/pkg/validation"
)

type UserHandler struct {
	Bus    *application.Bus
	Logger *logrus.Logger
}

func NewUserHandler(bus *application.Bus, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Bus: bus, Logger: logger}
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required,username"`
	Email       string `json:"email" binding:"required,max=255"`
	FirstName   string `json:"firstName" binding:"required,personname"`
	LastName    string `json:"lastName" binding:"required,personname"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(application.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"dateOfBirth": "must be a date (YYYY-MM-DD)"})
		return
	}

	res, err := application.Send[application.CreateUserCommand, uuid.UUID](c.Request.Context(), h.Bus, application.CreateUserCommand{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
	})
	if err != nil {
		h.internalError(c, "create user", err)
		return
	}
	if !res.IsSuccess() {
		h.failure(c, res.Err())
		return
	}
	id := res.Value().String()
	c.Header("Location", "/api/users/"+id)
	response.Success(c, http.StatusCreated, createUserResponse{ID: id}, "user created", nil)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", map[string]string{"id": "must be a valid UUID"})
		return
	}
	res, err := application.Send[application.GetUserByIDQuery, application.UserDTO](c.Request.Context(), h.Bus, application.GetUserByIDQuery{ID: id})
	if err != nil {
		h.internalError(c, "get user", err)
		return
	}
	if !res.IsSuccess() {
		h.failure(c, res.Err())
		return
	}
	response.Success(c, http.StatusOK, res.Value(), "ok", nil)
}

// failure maps an expected failure onto its status code.
func (h *UserHandler) failure(c *gin.Context, f *application.Error) {
	var details any
	if f.Field != "" {
		details = map[string]string{f.Field: f.Message}
	}
	switch {
	case errors.Is(f, application.ErrValidation):
		response.Error[any](c, http.StatusBadRequest, f.Message, details)
	case errors.Is(f, application.ErrConflict):
		response.Error[any](c, http.StatusConflict, f.Message, details)
	case errors.Is(f, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, f.Message, details)
	default:
		h.internalError(c, "unknown failure kind", f)
	}
}

func (h *UserHandler) internalError(c *gin.Context, op string, err error) {
	h.Logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"op":         op,
	}).WithError(err).Error("request failed")
	response.Error[any](c, http.StatusInternalServerError, middleware.InternalErrorMessage, nil)
}
