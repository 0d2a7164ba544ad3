package dto

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponseDTO struct {
	UserID         string  `json:"user_id"`
	Token          string  `json:"token"`
	ProfilePicture *string `json:"profile_picture"`
	UserName       string  `json:"user_name"`
	Role           string  `json:"role"`
}

type SendOTPDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPDTO keeps the code as text so a malformed one is reported
// against the otp field instead of failing the JSON bind.
type VerifyOTPDTO struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,otp"`
}

type VerifiedEmailDTO struct {
	Email string `json:"email"`
}

type UpdatePasswordDTO struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}
