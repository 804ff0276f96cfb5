package model

import (
	"strings"
	"time"
)

// Raw request payloads as bound from JSON bodies or query strings.
// Field values are untrusted; the validate package turns them into the
// *Input types below or into a field-error list.

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

type UpdateUserInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *Role   `json:"role,omitempty"`
}

func (u UpdateUserInput) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetInput struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type PasswordResetConfirmInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UserQueryRequest carries raw query-string parameters; absent
// parameters are empty strings.
type UserQueryRequest struct {
	Page   string `query:"page"`
	Limit  string `query:"limit"`
	Role   string `query:"role"`
	Search string `query:"search"`
}

type UserQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Role   *Role  `json:"role,omitempty"`
	Search string `json:"search,omitempty"`
}

// Catalog and loan payloads are bound and checked through echo's
// validator; they carry no string-normalization rules.

type CreateBookRequest struct {
	Title    string  `json:"title" validate:"required,min=1,max=255"`
	Author   string  `json:"author" validate:"required,min=1,max=255"`
	Year     int     `json:"year" validate:"required,gt=0"`
	Category string  `json:"category" validate:"required,min=1,max=100"`
	ISBN     *string `json:"isbn" validate:"omitempty,min=10,max=17"`
}

type CreateJournalRequest struct {
	Title  string  `json:"title" validate:"required,min=1,max=255"`
	Volume int     `json:"volume" validate:"required,gt=0"`
	Issue  int     `json:"issue" validate:"required,gt=0"`
	Year   int     `json:"year" validate:"required,gt=0"`
	ISSN   *string `json:"issn" validate:"omitempty,min=9,max=9"`
}

type CreateReportRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Author      string  `json:"author" validate:"required,min=1,max=255"`
	Supervisor  *string `json:"supervisor" validate:"omitempty,min=1,max=255"`
	Institution string  `json:"institution" validate:"required,min=1,max=255"`
	Year        int     `json:"year" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=PHD MASTER BACHELOR"`
}

type BorrowRequest struct {
	UserID  int  `json:"userId" validate:"required,gt=0"`
	ItemID  int  `json:"itemId" validate:"required,gt=0"`
	DueDate Date `json:"dueDate" validate:"required"`
}

type ReturnRequest struct {
	ReturnDate Date `json:"returnDate" validate:"required"`
}

type CreateTargetRequest struct {
	UserID   int     `json:"userId" validate:"required,gt=0"`
	Year     int     `json:"year" validate:"required,gt=0"`
	Category *string `json:"category" validate:"omitempty,min=1,max=100"`
	Target   int     `json:"target" validate:"required,gt=0"`
}

// Date accepts both date-only and RFC3339 JSON values.
type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}
