package events

const (
	UserRegisteredName  = "user.registered"
	PasswordChangedName = "user.password_changed"
)

type UserRegistered struct {
	EmpID    string
	Username string
	Email    string
	FullName string
}

func (UserRegistered) Name() string { return UserRegisteredName }

type PasswordChanged struct {
	Email string
}

func (PasswordChanged) Name() string { return PasswordChangedName }
