// AngelaMos | 2026
// dto.go

package auth

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ResetPasswordRequest carries only a length cap. An empty or mismatched
// pair is a soft "link expired" outcome, decided after the token checks.
type ResetPasswordRequest struct {
	Password        string `json:"password"         validate:"max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"max=128"`
}

// UserResponse is the login projection of a user. It never carries the
// password hash or reset fields.
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	StatusCode  int          `json:"statusCode"`
	Data        UserResponse `json:"data"`
}

type MessageResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type CurrentUserResponse struct {
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Data       UserResponse `json:"data"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
	}
}
