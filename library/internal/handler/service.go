package handler

import (
	"context"
	"time"

	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	Register(ctx context.Context, in model.RegisterInput) (model.User, error)
	Login(ctx context.Context, in model.LoginInput) (model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	ListUsers(ctx context.Context, q model.UserQuery) (model.ListUsers, error)
	UpdateUser(ctx context.Context, id int, in model.UpdateUserInput) (model.User, error)
	DeleteUser(ctx context.Context, id int) error
	ChangePassword(ctx context.Context, userID int, in model.ChangePasswordInput) error
	PasswordResetRequest(ctx context.Context, in model.PasswordResetInput) (string, error)
	PasswordResetConfirm(ctx context.Context, in model.PasswordResetConfirmInput) error

	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	ListBooks(ctx context.Context, category string, page, size int) (model.ListBooks, error)
	DeleteBook(ctx context.Context, id int) error
	CreateJournal(ctx context.Context, req model.CreateJournalRequest) (model.Journal, error)
	GetJournal(ctx context.Context, id int) (model.Journal, error)
	ListJournals(ctx context.Context, page, size int) (model.ListJournals, error)
	DeleteJournal(ctx context.Context, id int) error
	CreateReport(ctx context.Context, req model.CreateReportRequest) (model.ResearchReport, error)
	GetReport(ctx context.Context, id int) (model.ResearchReport, error)
	ListReports(ctx context.Context, page, size int) (model.ListReports, error)
	DeleteReport(ctx context.Context, id int) error

	Borrow(ctx context.Context, kind model.ItemKind, req model.BorrowRequest) (model.Loan, error)
	Return(ctx context.Context, kind model.ItemKind, loanID int, returnDate time.Time) (model.Loan, error)
	UserLoans(ctx context.Context, userID int) ([]model.Loan, error)

	CreateTarget(ctx context.Context, req model.CreateTargetRequest) (model.BookTarget, error)
	ListTargets(ctx context.Context, userID, year int) ([]model.BookTarget, error)

	ListAudit(ctx context.Context, page, size int) (model.ListAudit, error)
}

var _ LibraryService = (*service.Service)(nil)
