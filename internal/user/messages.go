// AngelaMos | 2026
// messages.go

package user

const (
	MsgUserNotFound      = "user not found"
	MsgEmailExists       = "Email already in use."
	MsgPhoneExists       = "Phone already in use."
	MsgUserExists        = "User already exists."
	MsgUserCreated       = "user create successfully"
	MsgUserUpdated       = "User updated successfully"
	MsgUserDeleted       = "User deleted successfully"
	MsgUserRetrieved     = "user retrieved successfully."
	MsgUsersRetrieved    = "Users retrieved successfully"
	MsgPasswordInvalid   = "Your password must be at least 8 characters long, contain at least one number and have a mixture of uppercase and lowercase letters."
	MsgModifyNotAllowed  = "you may only modify your own account"
	MsgDeleteAdminDenied = "cannot delete admin users"
)
