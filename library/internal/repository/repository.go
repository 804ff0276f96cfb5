package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
)

type Repository interface {
	CreateUser(ctx context.Context, in model.RegisterInput) (model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context, q model.UserQuery) (model.ListUsers, error)
	UpdateUser(ctx context.Context, id int, in model.UpdateUserInput) (model.User, error)
	DeleteUser(ctx context.Context, id int) error
	UpdatePassword(ctx context.Context, userID int, hash string) error
	CountOpenLoans(ctx context.Context, userID int) (int, error)

	CreateResetToken(ctx context.Context, token string, userID int, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, token string) (int, error)

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

	CreateLoan(ctx context.Context, kind model.ItemKind, userID, itemID int, dueDate time.Time) (model.Loan, error)
	ReturnLoan(ctx context.Context, kind model.ItemKind, loanID int, returnDate time.Time) (model.Loan, error)
	ListLoans(ctx context.Context, kind model.ItemKind, userID int) ([]model.Loan, error)

	CreateTarget(ctx context.Context, req model.CreateTargetRequest) (model.BookTarget, error)
	ListTargets(ctx context.Context, userID, year int) ([]model.BookTarget, error)

	InsertAudit(ctx context.Context, ev model.AuditEvent) error
	ListAudit(ctx context.Context, page, size int) (model.ListAudit, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	booksTableName        = `books`
	journalsTableName     = `journals`
	reportsTableName      = `research_reports`
	userBooksTableName    = `user_books`
	userJournalsTableName = `user_journals`
	userReportsTableName  = `user_reports`
	bookTargetsTableName  = `book_targets`
	auditLogsTableName    = `audit_logs`
	resetTokensTableName  = `password_reset_tokens`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// wrapPgErr maps constraint violations onto the sentinel errors the
// service layer reports as conflicts. The database is the authority of
// record: even pre-screened cases (duplicate email) can still race.
func wrapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == "users_email_key" {
				return errs.ErrEmailTaken
			}
			return errs.ErrConflict
		case pgerrcode.ForeignKeyViolation:
			return errs.ErrConflict
		}
	}
	return err
}

func paginate(q sq.SelectBuilder, page, size int) sq.SelectBuilder {
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	return q
}
