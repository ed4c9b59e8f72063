package handler

import "github.com/inkpost/blog-api/internal/core/domain"

// --- Auth ---

type signupRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type meResponse struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// --- Posts ---

type postRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}
