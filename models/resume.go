package models

type ResumeRequest struct {
	Email string `json:"email" binding:"required,email"`
}
