package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/library/internal/repository"
	"github.com/dkenzhe/library-service/library/internal/service"
	"github.com/dkenzhe/library-service/library/internal/validate"
)

// repoStub fills in just the calls a test needs; anything else panics
// through the embedded nil interface.
type repoStub struct {
	repository.Repository
	getUser           func(ctx context.Context, id int) (model.User, error)
	getUserByEmail    func(ctx context.Context, email string) (model.User, error)
	updatePassword    func(ctx context.Context, userID int, hash string) error
	countOpenLoans    func(ctx context.Context, userID int) (int, error)
	deleteUser        func(ctx context.Context, id int) error
	createResetToken  func(ctx context.Context, token string, userID int, expiresAt time.Time) error
	consumeResetToken func(ctx context.Context, token string) (int, error)
	listLoans         func(ctx context.Context, kind model.ItemKind, userID int) ([]model.Loan, error)
}

func (s *repoStub) GetUser(ctx context.Context, id int) (model.User, error) {
	return s.getUser(ctx, id)
}

func (s *repoStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUserByEmail(ctx, email)
}

func (s *repoStub) UpdatePassword(ctx context.Context, userID int, hash string) error {
	return s.updatePassword(ctx, userID, hash)
}

func (s *repoStub) CountOpenLoans(ctx context.Context, userID int) (int, error) {
	return s.countOpenLoans(ctx, userID)
}

func (s *repoStub) DeleteUser(ctx context.Context, id int) error {
	return s.deleteUser(ctx, id)
}

func (s *repoStub) CreateResetToken(ctx context.Context, token string, userID int, expiresAt time.Time) error {
	return s.createResetToken(ctx, token, userID, expiresAt)
}

func (s *repoStub) ConsumeResetToken(ctx context.Context, token string) (int, error) {
	return s.consumeResetToken(ctx, token)
}

func (s *repoStub) ListLoans(ctx context.Context, kind model.ItemKind, userID int) ([]model.Loan, error) {
	return s.listLoans(ctx, kind, userID)
}

func newService(repo repository.Repository) *service.Service {
	return service.NewService(repo, service.NopAuditor{}, zap.NewExample().Named("test"))
}

// stored hashes are bcrypt over a sha256 hex digest of the password
func hashOf(t *testing.T, password string) string {
	t.Helper()
	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(sum[:])), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func requireVerifies(t *testing.T, hash, password string) {
	t.Helper()
	sum := sha256.Sum256([]byte(password))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(hex.EncodeToString(sum[:]))))
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stored := model.User{ID: 1, Email: "a@b.com", Password: hashOf(t, "Abcdef1")}
	repo := &repoStub{
		getUserByEmail: func(_ context.Context, email string) (model.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return model.User{}, errs.ErrNotFound
		},
	}
	svc := newService(repo)

	user, err := svc.Login(ctx, model.LoginInput{Email: "a@b.com", Password: "Abcdef1"})
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)

	_, err = svc.Login(ctx, model.LoginInput{Email: "a@b.com", Password: "wrong"})
	require.ErrorIs(t, err, errs.ErrWrongPassword)

	// unknown email is indistinguishable from a wrong password
	_, err = svc.Login(ctx, model.LoginInput{Email: "ghost@b.com", Password: "Abcdef1"})
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}

func TestService_Register_HashesPassword(t *testing.T) {
	t.Parallel()

	var inserted model.RegisterInput
	repo := &stubCreateUser{onCreate: func(in model.RegisterInput) { inserted = in }}
	svc := newService(repo)

	_, err := svc.Register(context.Background(), model.RegisterInput{
		Name: "Al", Email: "a@b.com", Password: "Abcdef1", Role: model.RoleStudent,
	})
	require.NoError(t, err)
	require.NotEqual(t, "Abcdef1", inserted.Password)
	requireVerifies(t, inserted.Password, "Abcdef1")
}

// passwords at the top of the accepted 6-128 range exceed bcrypt's
// 72-byte input cap and must still hash and verify
func TestService_Register_LongPassword(t *testing.T) {
	t.Parallel()

	password := "Ab1" + strings.Repeat("x", 97)
	in, err := validate.Register(model.RegisterRequest{
		Name: "Al", Email: "a@b.com", Password: password, Role: "STUDENT",
	})
	require.NoError(t, err)

	var inserted model.RegisterInput
	repo := &stubCreateUser{onCreate: func(in model.RegisterInput) { inserted = in }}
	_, err = newService(repo).Register(context.Background(), in)
	require.NoError(t, err)
	requireVerifies(t, inserted.Password, password)
}

type stubCreateUser struct {
	repository.Repository
	onCreate func(in model.RegisterInput)
}

func (s *stubCreateUser) CreateUser(_ context.Context, in model.RegisterInput) (model.User, error) {
	s.onCreate(in)
	return model.User{ID: 1, Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var storedHash string
	repo := &repoStub{
		getUser: func(_ context.Context, id int) (model.User, error) {
			return model.User{ID: id, Password: hashOf(t, "OldPass1")}, nil
		},
		updatePassword: func(_ context.Context, _ int, hash string) error {
			storedHash = hash
			return nil
		},
	}
	svc := newService(repo)

	err := svc.ChangePassword(ctx, 1, model.ChangePasswordInput{
		CurrentPassword: "OldPass1", NewPassword: "NewPass1",
	})
	require.NoError(t, err)
	requireVerifies(t, storedHash, "NewPass1")

	longPass := "Cd2" + strings.Repeat("y", 120)
	err = svc.ChangePassword(ctx, 1, model.ChangePasswordInput{
		CurrentPassword: "OldPass1", NewPassword: longPass,
	})
	require.NoError(t, err)
	requireVerifies(t, storedHash, longPass)

	err = svc.ChangePassword(ctx, 1, model.ChangePasswordInput{
		CurrentPassword: "nope", NewPassword: "NewPass1",
	})
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}

func TestService_DeleteUser_OpenLoans(t *testing.T) {
	t.Parallel()

	deleted := false
	repo := &repoStub{
		countOpenLoans: func(context.Context, int) (int, error) { return 2, nil },
		deleteUser: func(context.Context, int) error {
			deleted = true
			return nil
		},
	}
	svc := newService(repo)

	err := svc.DeleteUser(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrHasOpenLoans)
	require.False(t, deleted, "delete must not reach the store while loans are open")
}

func TestService_PasswordReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown email reports success without a token", func(t *testing.T) {
		t.Parallel()
		repo := &repoStub{
			getUserByEmail: func(context.Context, string) (model.User, error) {
				return model.User{}, errs.ErrNotFound
			},
			createResetToken: func(context.Context, string, int, time.Time) error {
				t.Fatal("no token must be issued for an unknown email")
				return nil
			},
		}
		token, err := newService(repo).PasswordResetRequest(ctx, model.PasswordResetInput{Email: "ghost@b.com"})
		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("issued token confirms once", func(t *testing.T) {
		t.Parallel()
		var issued string
		var storedHash string
		repo := &repoStub{
			getUserByEmail: func(context.Context, string) (model.User, error) {
				return model.User{ID: 5, Email: "a@b.com"}, nil
			},
			createResetToken: func(_ context.Context, token string, userID int, expiresAt time.Time) error {
				require.Equal(t, 5, userID)
				require.True(t, expiresAt.After(time.Now()))
				issued = token
				return nil
			},
			consumeResetToken: func(_ context.Context, token string) (int, error) {
				if token == issued {
					return 5, nil
				}
				return 0, errs.ErrTokenInvalid
			},
			updatePassword: func(_ context.Context, _ int, hash string) error {
				storedHash = hash
				return nil
			},
		}
		svc := newService(repo)

		token, err := svc.PasswordResetRequest(ctx, model.PasswordResetInput{Email: "a@b.com"})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		err = svc.PasswordResetConfirm(ctx, model.PasswordResetConfirmInput{Token: token, NewPassword: "NewPass1"})
		require.NoError(t, err)
		requireVerifies(t, storedHash, "NewPass1")

		err = svc.PasswordResetConfirm(ctx, model.PasswordResetConfirmInput{Token: "f3b0c0de-0000-4000-8000-000000000000", NewPassword: "NewPass1"})
		require.ErrorIs(t, err, errs.ErrTokenInvalid)
	})
}

func TestService_UserLoans_Aggregates(t *testing.T) {
	t.Parallel()

	repo := &repoStub{
		getUser: func(_ context.Context, id int) (model.User, error) {
			return model.User{ID: id}, nil
		},
		listLoans: func(_ context.Context, kind model.ItemKind, userID int) ([]model.Loan, error) {
			return []model.Loan{{ID: 1, Kind: kind, UserID: userID}}, nil
		},
	}
	svc := newService(repo)

	loans, err := svc.UserLoans(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, loans, 3)

	kinds := map[model.ItemKind]bool{}
	for _, loan := range loans {
		kinds[loan.Kind] = true
	}
	require.Len(t, kinds, 3, "one slice per loan table")
}

func TestService_UpdateUser_EmptyPatch(t *testing.T) {
	t.Parallel()

	svc := newService(&repoStub{})
	_, err := svc.UpdateUser(context.Background(), 1, model.UpdateUserInput{})
	require.ErrorIs(t, err, errs.ErrEmptyUpdate)
}
