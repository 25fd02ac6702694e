package dto

// RegisterRequest creates a teacher account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest signs a teacher in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the bearer token the client replays on every
// teacher-scoped call.
type AuthResponse struct {
	TeacherID uint   `json:"teacher_id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
}
