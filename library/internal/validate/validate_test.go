package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/library/internal/validate"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	ve, ok := err.(validate.Errors)
	require.True(t, ok, "expected validate.Errors, got %T", err)
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fe.Field)
	}
	return out
}

func TestRegister(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name      string
		req       model.RegisterRequest
		want      model.RegisterInput
		errFields []string
	}{
		{
			name: "ok normalizes email",
			req:  model.RegisterRequest{Name: "Al", Email: " A@B.COM ", Password: "Abcdef1", Role: "STUDENT"},
			want: model.RegisterInput{Name: "Al", Email: "a@b.com", Password: "Abcdef1", Role: model.RoleStudent},
		},
		{
			name: "ok trims name",
			req:  model.RegisterRequest{Name: "  Aliya Bekova  ", Email: "aliya@example.com", Password: "Str0ngPass", Role: "LIBRARIAN"},
			want: model.RegisterInput{Name: "Aliya Bekova", Email: "aliya@example.com", Password: "Str0ngPass", Role: model.RoleLibrarian},
		},
		{
			name:      "name too short",
			req:       model.RegisterRequest{Name: "A", Email: "a@b.com", Password: "Abcdef1", Role: "ADMIN"},
			errFields: []string{"name"},
		},
		{
			name:      "invalid email",
			req:       model.RegisterRequest{Name: "Al", Email: "not-an-email", Password: "Abcdef1", Role: "ADMIN"},
			errFields: []string{"email"},
		},
		{
			name:      "password missing uppercase",
			req:       model.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "abcdef1", Role: "ADMIN"},
			errFields: []string{"password"},
		},
		{
			name:      "password missing lowercase",
			req:       model.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "ABCDEF1", Role: "ADMIN"},
			errFields: []string{"password"},
		},
		{
			name:      "password missing digit",
			req:       model.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "Abcdefg", Role: "ADMIN"},
			errFields: []string{"password"},
		},
		{
			name:      "password too short",
			req:       model.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "Ab1", Role: "ADMIN"},
			errFields: []string{"password"},
		},
		{
			name: "symbols allowed when predicate satisfied",
			req:  model.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "Ab1!@#$%", Role: "ADMIN"},
			want: model.RegisterInput{Name: "Al", Email: "a@b.com", Password: "Ab1!@#$%", Role: model.RoleAdmin},
		},
		{
			name:      "unknown role",
			req:       model.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "Abcdef1", Role: "TEACHER"},
			errFields: []string{"role"},
		},
		{
			name:      "all fields missing",
			req:       model.RegisterRequest{},
			errFields: []string{"name", "email", "role", "password"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := validate.Register(tt.req)
			if len(tt.errFields) > 0 {
				require.ElementsMatch(t, tt.errFields, fields(t, err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRegister_Idempotent(t *testing.T) {
	t.Parallel()
	first, err := validate.Register(model.RegisterRequest{
		Name: " Al ", Email: " A@B.COM ", Password: "Abcdef1", Role: "STUDENT",
	})
	require.NoError(t, err)

	second, err := validate.Register(model.RegisterRequest{
		Name: first.Name, Email: first.Email, Password: first.Password, Role: string(first.Role),
	})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	in, err := validate.Login(model.LoginRequest{Email: " USER@Example.COM ", Password: "whatever"})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", in.Email)
	require.Equal(t, "whatever", in.Password)

	_, err = validate.Login(model.LoginRequest{Email: "user@example.com"})
	require.Equal(t, []string{"password"}, fields(t, err))

	_, err = validate.Login(model.LoginRequest{Password: "x"})
	require.Equal(t, []string{"email"}, fields(t, err))
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("empty patch rejected", func(t *testing.T) {
		t.Parallel()
		_, err := validate.UpdateUser(model.UpdateUserRequest{})
		require.Equal(t, []string{"body"}, fields(t, err))
	})

	t.Run("partial ok", func(t *testing.T) {
		t.Parallel()
		email := " New@Mail.COM "
		in, err := validate.UpdateUser(model.UpdateUserRequest{Email: &email})
		require.NoError(t, err)
		require.Nil(t, in.Name)
		require.Nil(t, in.Role)
		require.Equal(t, "new@mail.com", *in.Email)
	})

	t.Run("present field must satisfy register rules", func(t *testing.T) {
		t.Parallel()
		name := "x"
		role := "GUEST"
		_, err := validate.UpdateUser(model.UpdateUserRequest{Name: &name, Role: &role})
		require.ElementsMatch(t, []string{"name", "role"}, fields(t, err))
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	in, err := validate.ChangePassword(model.ChangePasswordRequest{
		CurrentPassword: "old", NewPassword: "Abcdef1", ConfirmPassword: "Abcdef1",
	})
	require.NoError(t, err)
	require.Equal(t, "Abcdef1", in.NewPassword)

	_, err = validate.ChangePassword(model.ChangePasswordRequest{
		CurrentPassword: "old", NewPassword: "Abcdef1", ConfirmPassword: "Abcdef2",
	})
	// the mismatch points at the confirmation field
	require.Equal(t, []string{"confirmPassword"}, fields(t, err))

	_, err = validate.ChangePassword(model.ChangePasswordRequest{
		NewPassword: "weak", ConfirmPassword: "weak",
	})
	require.ElementsMatch(t, []string{"currentPassword", "newPassword"}, fields(t, err))
}

func TestResetConfirm(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name      string
		req       model.PasswordResetConfirmRequest
		errFields []string
	}{
		{
			name: "ok",
			req: model.PasswordResetConfirmRequest{
				Token:       "0b19e5c6-9d2b-4e6a-8a3f-7f1d2c3b4a5e",
				NewPassword: "Abcdef1", ConfirmPassword: "Abcdef1",
			},
		},
		{
			name: "any uuid version accepted",
			req: model.PasswordResetConfirmRequest{
				Token:       "0b19e5c6-9d2b-1e6a-8a3f-7f1d2c3b4a5e",
				NewPassword: "Abcdef1", ConfirmPassword: "Abcdef1",
			},
		},
		{
			name: "token not a uuid",
			req: model.PasswordResetConfirmRequest{
				Token:       "nope",
				NewPassword: "Abcdef1", ConfirmPassword: "Abcdef1",
			},
			errFields: []string{"token"},
		},
		{
			name: "confirm mismatch lands on confirm field",
			req: model.PasswordResetConfirmRequest{
				Token:       "0b19e5c6-9d2b-4e6a-8a3f-7f1d2c3b4a5e",
				NewPassword: "Abcdef1", ConfirmPassword: "Abcdef2",
			},
			errFields: []string{"confirmPassword"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := validate.ResetConfirm(tt.req)
			if len(tt.errFields) > 0 {
				require.ElementsMatch(t, tt.errFields, fields(t, err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUserQuery(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name      string
		req       model.UserQueryRequest
		want      model.UserQuery
		errFields []string
	}{
		{
			name: "defaults when absent",
			req:  model.UserQueryRequest{},
			want: model.UserQuery{Page: 1, Limit: 10},
		},
		{
			name: "explicit values",
			req:  model.UserQueryRequest{Page: "3", Limit: "50"},
			want: model.UserQuery{Page: 3, Limit: 50},
		},
		{
			name:      "page zero fails",
			req:       model.UserQueryRequest{Page: "0"},
			errFields: []string{"page"},
		},
		{
			name:      "page not numeric fails before default",
			req:       model.UserQueryRequest{Page: "abc"},
			errFields: []string{"page"},
		},
		{
			name:      "limit above cap",
			req:       model.UserQueryRequest{Limit: "150"},
			errFields: []string{"limit"},
		},
		{
			name:      "limit zero",
			req:       model.UserQueryRequest{Limit: "0"},
			errFields: []string{"limit"},
		},
		{
			name:      "role filter must be enum",
			req:       model.UserQueryRequest{Role: "TEACHER"},
			errFields: []string{"role"},
		},
		{
			name: "role and search",
			req:  model.UserQueryRequest{Role: "ADMIN", Search: "ali"},
			want: model.UserQuery{Page: 1, Limit: 10, Role: rolePtr(model.RoleAdmin), Search: "ali"},
		},
		{
			name:      "blank search",
			req:       model.UserQueryRequest{Search: "   "},
			errFields: []string{"search"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := validate.UserQuery(tt.req)
			if len(tt.errFields) > 0 {
				require.ElementsMatch(t, tt.errFields, fields(t, err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func rolePtr(r model.Role) *model.Role { return &r }

func TestUserID(t *testing.T) {
	t.Parallel()

	id, err := validate.UserID("7")
	require.NoError(t, err)
	require.Equal(t, 7, id)

	_, err = validate.UserID("-5")
	require.Equal(t, []string{"id"}, fields(t, err))

	_, err = validate.UserID("abc")
	require.Equal(t, []string{"id"}, fields(t, err))

	_, err = validate.UserID("")
	require.Equal(t, []string{"id"}, fields(t, err))
}
