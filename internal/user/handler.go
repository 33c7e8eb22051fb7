// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode"

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
		validator: NewValidator(),
	}
}

// NewValidator returns a validator that understands the strongpassword tag
// used by CreateUserRequest.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	//nolint:errcheck // tag name is a constant and the func is non-nil
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return v
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/user", func(r chi.Router) {
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.With(adminOnly).Get("/findAll", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.With(adminOnly).Delete("/{id}", h.DeleteUser)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.Created(w, Response{
		StatusCode: http.StatusCreated,
		Message:    MsgUserCreated,
		Data:       ToUserResponse(user),
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:  parseIntQuery(r, "page", defaultPage),
		Limit: parseIntQuery(r, "limit", defaultLimit),
		Name:  r.URL.Query().Get("name"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		MsgUsersRetrieved,
		ToUserResponseList(users),
		params.Page,
		params.Limit,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserRole(r.Context()),
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, Response{
		StatusCode: http.StatusOK,
		Message:    MsgUserRetrieved,
		Data:       ToUserResponse(user),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")

	err := h.service.CanModify(
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
		targetID,
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	user, err := h.service.UpdateUser(
		r.Context(),
		targetID,
		middleware.GetUserRole(r.Context()),
		req,
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, Response{
		StatusCode: http.StatusOK,
		Message:    MsgUserUpdated,
		Data:       ToUserResponse(user),
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, Response{
		StatusCode: http.StatusOK,
		Message:    MsgUserDeleted,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.ConflictError(MsgEmailExists))
	case errors.Is(err, ErrPhoneExists):
		core.JSONError(w, core.ConflictError(MsgPhoneExists))
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.ConflictError(MsgUserExists))
	case errors.Is(err, core.ErrNotFound):
		core.JSONError(w, core.NotFoundError(MsgUserNotFound))
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, forbiddenMessage(err))
	default:
		core.InternalServerError(w, err)
	}
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			if fe.Tag() == "strongpassword" {
				core.BadRequest(w, MsgPasswordInvalid)
				return
			}
		}
	}
	core.BadRequest(w, core.FormatValidationError(err))
}

func forbiddenMessage(err error) string {
	if errors.Is(err, errDeleteAdmin) {
		return MsgDeleteAdminDenied
	}
	return MsgModifyNotAllowed
}

// strongPassword requires at least one digit, one upper case and one
// lower case letter. Length is enforced by the min/max tags.
func strongPassword(fl validator.FieldLevel) bool {
	var hasDigit, hasUpper, hasLower bool
	for _, c := range fl.Field().String() {
		switch {
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		}
	}
	return hasDigit && hasUpper && hasLower
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
