// AngelaMos | 2026
// messages.go

package auth

const (
	MsgInvalidEmail       = "Please check your email is enter correct"
	MsgInvalidPassword    = "Please check your password is enter correct"
	MsgEmailNotFound      = "Email not found"
	MsgResetLinkSent      = "forgot password link sent on your email address"
	MsgResetLinkExpired   = "Your reset password link has expired"
	MsgPasswordUpdated    = "User password has been updated successfully."
	MsgInvalidResetToken  = "Invalid reset password link"
	MsgCurrentUser        = "user retrieved successfully."
	MsgTooManyResetEmails = "too many password reset requests, try again later"
)
