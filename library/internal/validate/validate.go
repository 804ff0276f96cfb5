// Package validate turns raw request payloads into normalized typed
// values or a field-addressed error list. Checkers are pure: no I/O, no
// shared state, and normalization (trim, email lower-casing) runs
// before any rule so an already-normalized value passes unchanged.
package validate

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dkenzhe/library-service/library/internal/model"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the failure half of every checker: one entry per offending
// field, never collapsed into a single message.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

const (
	msgRequired   = "is required"
	msgName       = "must be between 2 and 100 characters"
	msgEmail      = "must be a valid email address"
	msgPassword   = "must be 6-128 characters with at least one lowercase letter, one uppercase letter and one digit"
	msgRole       = "must be one of ADMIN, LIBRARIAN, STUDENT"
	msgConfirm    = "does not match new password"
	msgToken      = "must be a valid UUID"
	msgPage       = "must be a positive integer"
	msgLimit      = "must be an integer between 1 and 100"
	msgSearch     = "must not be empty"
	msgID         = "must be a positive integer"
	msgEmptyPatch = "at least one field must be set"
)

var vld = validator.New()

func checkName(e *Errors, field, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		e.add(field, msgRequired)
		return name
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		e.add(field, msgName)
	}
	return name
}

func checkEmail(e *Errors, field, email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		e.add(field, msgRequired)
		return email
	}
	if err := vld.Var(email, "email"); err != nil {
		e.add(field, msgEmail)
	}
	return email
}

// checkPassword enforces the conjunctive complexity predicate: any
// input with the three required character classes passes, whatever
// else it contains. Passwords are never trimmed.
func checkPassword(e *Errors, field, pw string) {
	if pw == "" {
		e.add(field, msgRequired)
		return
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if n := utf8.RuneCountInString(pw); n < 6 || n > 128 || !lower || !upper || !digit {
		e.add(field, msgPassword)
	}
}

func checkRole(e *Errors, field, role string) model.Role {
	role = strings.TrimSpace(role)
	if role == "" {
		e.add(field, msgRequired)
		return ""
	}
	if err := vld.Var(role, "oneof=ADMIN LIBRARIAN STUDENT"); err != nil {
		e.add(field, msgRole)
		return ""
	}
	return model.Role(role)
}

func checkConfirm(e *Errors, field, pw, confirm string) {
	if confirm == "" {
		e.add(field, msgRequired)
		return
	}
	// reported against the confirmation field so clients highlight
	// the field the user has to fix
	if confirm != pw {
		e.add(field, msgConfirm)
	}
}

func Register(req model.RegisterRequest) (model.RegisterInput, error) {
	var e Errors
	in := model.RegisterInput{
		Name:     checkName(&e, "name", req.Name),
		Email:    checkEmail(&e, "email", req.Email),
		Password: req.Password,
		Role:     checkRole(&e, "role", req.Role),
	}
	checkPassword(&e, "password", req.Password)
	if len(e) > 0 {
		return model.RegisterInput{}, e
	}
	return in, nil
}

func Login(req model.LoginRequest) (model.LoginInput, error) {
	var e Errors
	in := model.LoginInput{
		Email:    checkEmail(&e, "email", req.Email),
		Password: req.Password,
	}
	if req.Password == "" {
		e.add("password", msgRequired)
	}
	if len(e) > 0 {
		return model.LoginInput{}, e
	}
	return in, nil
}

// UpdateUser validates a partial patch: every field is optional but
// any field present must satisfy the Register rules, and at least one
// field must be set.
func UpdateUser(req model.UpdateUserRequest) (model.UpdateUserInput, error) {
	var (
		e  Errors
		in model.UpdateUserInput
	)
	if req.Name == nil && req.Email == nil && req.Role == nil {
		e.add("body", msgEmptyPatch)
		return model.UpdateUserInput{}, e
	}
	if req.Name != nil {
		name := checkName(&e, "name", *req.Name)
		in.Name = &name
	}
	if req.Email != nil {
		email := checkEmail(&e, "email", *req.Email)
		in.Email = &email
	}
	if req.Role != nil {
		role := checkRole(&e, "role", *req.Role)
		in.Role = &role
	}
	if len(e) > 0 {
		return model.UpdateUserInput{}, e
	}
	return in, nil
}

func ChangePassword(req model.ChangePasswordRequest) (model.ChangePasswordInput, error) {
	var e Errors
	if req.CurrentPassword == "" {
		e.add("currentPassword", msgRequired)
	}
	checkPassword(&e, "newPassword", req.NewPassword)
	checkConfirm(&e, "confirmPassword", req.NewPassword, req.ConfirmPassword)
	if len(e) > 0 {
		return model.ChangePasswordInput{}, e
	}
	return model.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, nil
}

func ResetRequest(req model.PasswordResetRequest) (model.PasswordResetInput, error) {
	var e Errors
	in := model.PasswordResetInput{Email: checkEmail(&e, "email", req.Email)}
	if len(e) > 0 {
		return model.PasswordResetInput{}, e
	}
	return in, nil
}

func ResetConfirm(req model.PasswordResetConfirmRequest) (model.PasswordResetConfirmInput, error) {
	var e Errors
	token := strings.TrimSpace(req.Token)
	if token == "" {
		e.add("token", msgRequired)
	} else if err := vld.Var(token, "uuid"); err != nil {
		e.add("token", msgToken)
	}
	checkPassword(&e, "newPassword", req.NewPassword)
	checkConfirm(&e, "confirmPassword", req.NewPassword, req.ConfirmPassword)
	if len(e) > 0 {
		return model.PasswordResetConfirmInput{}, e
	}
	return model.PasswordResetConfirmInput{
		Token:       token,
		NewPassword: req.NewPassword,
	}, nil
}

// UserQuery parses paging and filter parameters. A present-but-invalid
// value is an error; defaults apply only to absent fields.
func UserQuery(req model.UserQueryRequest) (model.UserQuery, error) {
	var e Errors
	q := model.UserQuery{Page: 1, Limit: 10}

	if raw := strings.TrimSpace(req.Page); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			e.add("page", msgPage)
		} else {
			q.Page = page
		}
	}
	if raw := strings.TrimSpace(req.Limit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			e.add("limit", msgLimit)
		} else {
			q.Limit = limit
		}
	}
	if raw := strings.TrimSpace(req.Role); raw != "" {
		if err := vld.Var(raw, "oneof=ADMIN LIBRARIAN STUDENT"); err != nil {
			e.add("role", msgRole)
		} else {
			role := model.Role(raw)
			q.Role = &role
		}
	}
	if req.Search != "" {
		search := strings.TrimSpace(req.Search)
		if search == "" {
			e.add("search", msgSearch)
		}
		q.Search = search
	}

	if len(e) > 0 {
		return model.UserQuery{}, e
	}
	return q, nil
}

// UserID parses a path parameter into a positive integer id.
func UserID(raw string) (int, error) {
	var e Errors
	raw = strings.TrimSpace(raw)
	if raw == "" {
		e.add("id", msgRequired)
		return 0, e
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		e.add("id", msgID)
		return 0, e
	}
	return id, nil
}
