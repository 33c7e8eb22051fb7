// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/user-api/internal/core"
	"github.com/carterperez-dev/templates/user-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /auth. forgotLimiter guards the endpoint that
// sends mail and may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	forgotLimiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/password-reset/{token}", h.ResetPassword)

		r.Group(func(r chi.Router) {
			if forgotLimiter != nil {
				r.Use(forgotLimiter)
			}
			r.Post("/forgot-password", h.ForgotPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			core.Unauthorized(w, MsgInvalidEmail)
		case errors.Is(err, ErrInvalidPassword):
			core.Unauthorized(w, MsgInvalidPassword)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email, requestBaseURL(r)); err != nil {
		if errors.Is(err, ErrEmailNotFound) {
			core.JSONError(w, core.NotFoundError(MsgEmailNotFound))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, MessageResponse{
		StatusCode: http.StatusCreated,
		Message:    MsgResetLinkSent,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		core.BadRequest(w, MsgInvalidResetToken)
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.ResetPassword(r.Context(), token, req)
	if err != nil {
		if errors.Is(err, ErrInvalidReset) {
			core.JSONError(w, core.NewAppError(
				core.ErrTokenInvalid,
				MsgInvalidResetToken,
				http.StatusBadRequest,
				"TOKEN_INVALID",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if result.Expired {
		core.JSON(w, http.StatusNotAcceptable, MessageResponse{
			StatusCode: http.StatusNotAcceptable,
			Message:    MsgResetLinkExpired,
		})
		return
	}

	core.Created(w, MessageResponse{
		StatusCode: http.StatusCreated,
		Message:    MsgPasswordUpdated,
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CurrentUserResponse{
		StatusCode: http.StatusOK,
		Message:    MsgCurrentUser,
		Data:       *user,
	})
}

// requestBaseURL rebuilds scheme://host of the inbound request, trusting
// X-Forwarded-Proto from the proxy in front of the service.
func requestBaseURL(r *http.Request) string {
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}

	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto = strings.ToLower(strings.TrimSpace(strings.Split(fwd, ",")[0]))
	}

	return proto + "://" + r.Host
}
