package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/library/internal/repository"
)

const resetTokenTTL = time.Hour

// bcrypt caps input at 72 bytes; digesting first keeps the whole
// accepted password range (up to 128 chars) hashable.
func hashPassword(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(sum[:])), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	sum := sha256.Sum256([]byte(password))
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(hex.EncodeToString(sum[:])))
}

type Service struct {
	log   *zap.Logger
	repo  repository.Repository
	audit Auditor
}

func NewService(repo repository.Repository, audit Auditor, log *zap.Logger) *Service {
	return &Service{
		log:   log,
		repo:  repo,
		audit: audit,
	}
}

func (s *Service) Register(ctx context.Context, in model.RegisterInput) (model.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	in.Password = hash

	user, err := s.repo.CreateUser(ctx, in)
	if err != nil {
		return model.User{}, err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    user.ID,
		Action:    "user.register",
		Entity:    "user",
		Details:   user.Email,
		Timestamp: time.Now().UTC(),
	})
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password are the
// same error so the endpoint cannot be used to probe for accounts.
func (s *Service) Login(ctx context.Context, in model.LoginInput) (model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, errs.ErrWrongPassword
		}
		return model.User{}, err
	}
	if err := verifyPassword(user.Password, in.Password); err != nil {
		return model.User{}, errs.ErrWrongPassword
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, q model.UserQuery) (model.ListUsers, error) {
	return s.repo.ListUsers(ctx, q)
}

func (s *Service) UpdateUser(ctx context.Context, id int, in model.UpdateUserInput) (model.User, error) {
	if in.Empty() {
		return model.User{}, errs.ErrEmptyUpdate
	}
	user, err := s.repo.UpdateUser(ctx, id, in)
	if err != nil {
		return model.User{}, err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    user.ID,
		Action:    "user.update",
		Entity:    "user",
		Timestamp: time.Now().UTC(),
	})
	return user, nil
}

// DeleteUser pre-checks open loans for a precise conflict message; the
// RESTRICT constraints remain the authority if a loan races in between.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	open, err := s.repo.CountOpenLoans(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return errs.ErrHasOpenLoans
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    id,
		Action:    "user.delete",
		Entity:    "user",
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int, in model.ChangePasswordInput) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := verifyPassword(user.Password, in.CurrentPassword); err != nil {
		return errs.ErrWrongPassword
	}
	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    userID,
		Action:    "user.change_password",
		Entity:    "user",
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// PasswordResetRequest issues a single-use token. An unknown email
// reports success with an empty token so the endpoint cannot be used
// to probe for accounts. Token delivery (mail) is out of scope; the
// caller decides whether to expose it.
func (s *Service) PasswordResetRequest(ctx context.Context, in model.PasswordResetInput) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	token := uuid.NewString()
	if err := s.repo.CreateResetToken(ctx, token, user.ID, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return "", err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    user.ID,
		Action:    "user.reset_request",
		Entity:    "user",
		Timestamp: time.Now().UTC(),
	})
	return token, nil
}

func (s *Service) PasswordResetConfirm(ctx context.Context, in model.PasswordResetConfirmInput) error {
	userID, err := s.repo.ConsumeResetToken(ctx, in.Token)
	if err != nil {
		return err
	}
	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    userID,
		Action:    "user.reset_confirm",
		Entity:    "user",
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Service) Borrow(ctx context.Context, kind model.ItemKind, req model.BorrowRequest) (model.Loan, error) {
	loan, err := s.repo.CreateLoan(ctx, kind, req.UserID, req.ItemID, req.DueDate.Time)
	if err != nil {
		return model.Loan{}, err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    loan.UserID,
		Action:    "loan.create",
		Entity:    string(kind),
		Details:   fmt.Sprintf("item=%d loan=%d", loan.ItemID, loan.ID),
		Timestamp: time.Now().UTC(),
	})
	return loan, nil
}

func (s *Service) Return(ctx context.Context, kind model.ItemKind, loanID int, returnDate time.Time) (model.Loan, error) {
	loan, err := s.repo.ReturnLoan(ctx, kind, loanID, returnDate)
	if err != nil {
		return model.Loan{}, err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    loan.UserID,
		Action:    "loan.return",
		Entity:    string(kind),
		Details:   fmt.Sprintf("item=%d loan=%d", loan.ItemID, loan.ID),
		Timestamp: time.Now().UTC(),
	})
	return loan, nil
}

// UserLoans aggregates a user's borrowing history across the three
// loan tables in parallel.
func (s *Service) UserLoans(ctx context.Context, userID int) ([]model.Loan, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		loans []model.Loan
	)
	gg, ctx := errgroup.WithContext(ctx)
	for _, kind := range []model.ItemKind{model.KindBook, model.KindJournal, model.KindReport} {
		kind := kind
		gg.Go(func() error {
			part, err := s.repo.ListLoans(ctx, kind, userID)
			if err != nil {
				return err
			}
			mu.Lock()
			loans = append(loans, part...)
			mu.Unlock()
			return nil
		})
	}
	if err := gg.Wait(); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *Service) CreateTarget(ctx context.Context, req model.CreateTargetRequest) (model.BookTarget, error) {
	target, err := s.repo.CreateTarget(ctx, req)
	if err != nil {
		return model.BookTarget{}, err
	}
	s.audit.Publish(model.AuditEvent{
		UserID:    target.UserID,
		Action:    "target.create",
		Entity:    "target",
		Details:   fmt.Sprintf("year=%d target=%d", target.Year, target.Target),
		Timestamp: time.Now().UTC(),
	})
	return target, nil
}

func (s *Service) ListTargets(ctx context.Context, userID, year int) ([]model.BookTarget, error) {
	return s.repo.ListTargets(ctx, userID, year)
}

func (s *Service) RecordAudit(ctx context.Context, ev model.AuditEvent) error {
	return s.repo.InsertAudit(ctx, ev)
}

func (s *Service) ListAudit(ctx context.Context, page, size int) (model.ListAudit, error) {
	return s.repo.ListAudit(ctx, page, size)
}
