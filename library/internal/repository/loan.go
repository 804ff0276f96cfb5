package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
)

type loanTables struct {
	loans string
	items string
	fkCol string
}

func tablesFor(kind model.ItemKind) loanTables {
	switch kind {
	case model.KindJournal:
		return loanTables{loans: userJournalsTableName, items: journalsTableName, fkCol: "journal_id"}
	case model.KindReport:
		return loanTables{loans: userReportsTableName, items: reportsTableName, fkCol: "report_id"}
	default:
		return loanTables{loans: userBooksTableName, items: booksTableName, fkCol: "book_id"}
	}
}

// CreateLoan inserts a loan row and flips the item status cache in one
// transaction. The item row is locked first so concurrent borrows of
// the same item serialize on it.
func (r *repository) CreateLoan(ctx context.Context, kind model.ItemKind, userID, itemID int, dueDate time.Time) (model.Loan, error) {
	t := tablesFor(kind)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var status model.ItemStatus
	q := fmt.Sprintf(`select status from %s where id = $1 for update`, t.items)
	if err := tx.QueryRowContext(ctx, q, itemID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	if status != model.StatusAvailable {
		return model.Loan{}, errs.ErrItemUnavailable
	}

	var loan model.Loan
	q = fmt.Sprintf(`insert into %s (user_id, %s, due_date)
	values ($1, $2, $3)
	returning id, user_id, %s as item_id, borrow_date, due_date, return_date`,
		t.loans, t.fkCol, t.fkCol)
	if err := tx.GetContext(ctx, &loan, q, userID, itemID, dueDate); err != nil {
		r.log.Error("CreateLoan", zap.String("q", q), zap.Error(err))
		return model.Loan{}, wrapPgErr(err)
	}

	q = fmt.Sprintf(`update %s set status = $2, updated_at = now() where id = $1`, t.items)
	if _, err := tx.ExecContext(ctx, q, itemID, model.StatusBorrowed); err != nil {
		return model.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, err
	}
	loan.Kind = kind
	return loan, nil
}

// ReturnLoan closes an open loan, restores the item status cache and,
// for book loans, bumps the matching reading-target progress. All in
// one transaction so the cache never drifts from loan state.
func (r *repository) ReturnLoan(ctx context.Context, kind model.ItemKind, loanID int, returnDate time.Time) (model.Loan, error) {
	t := tablesFor(kind)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var loan model.Loan
	q := fmt.Sprintf(`select id, user_id, %s as item_id, borrow_date, due_date, return_date
	from %s where id = $1 for update`, t.fkCol, t.loans)
	if err := tx.GetContext(ctx, &loan, q, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	if !loan.Open() {
		return model.Loan{}, errs.ErrLoanClosed
	}
	if returnDate.Before(loan.BorrowDate) {
		return model.Loan{}, errs.ErrReturnDate
	}

	q = fmt.Sprintf(`update %s set return_date = $2 where id = $1`, t.loans)
	if _, err := tx.ExecContext(ctx, q, loanID, returnDate); err != nil {
		return model.Loan{}, err
	}

	q = fmt.Sprintf(`update %s set status = $2, updated_at = now() where id = $1`, t.items)
	if _, err := tx.ExecContext(ctx, q, loan.ItemID, model.StatusAvailable); err != nil {
		return model.Loan{}, err
	}

	if kind == model.KindBook {
		if err := r.bumpTargets(ctx, tx, loan.UserID, loan.ItemID, returnDate); err != nil {
			return model.Loan{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, err
	}
	loan.Kind = kind
	loan.ReturnDate = &returnDate
	return loan, nil
}

// bumpTargets increments progress on the user's targets for the year
// the book came back: the all-categories target and the one matching
// the book's category. Loan-return logic is the only progress writer.
func (r *repository) bumpTargets(ctx context.Context, tx execer, userID, bookID int, returnDate time.Time) error {
	var category string
	q := fmt.Sprintf(`select category from %s where id = $1`, booksTableName)
	if err := tx.QueryRowContext(ctx, q, bookID).Scan(&category); err != nil {
		return err
	}

	q = fmt.Sprintf(`update %s
	set progress = progress + 1
	where user_id = $1 and year = $2 and (category is null or category = $3)`,
		bookTargetsTableName)
	_, err := tx.ExecContext(ctx, q, userID, returnDate.Year(), category)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *repository) ListLoans(ctx context.Context, kind model.ItemKind, userID int) ([]model.Loan, error) {
	t := tablesFor(kind)

	q := fmt.Sprintf(`select id, user_id, %s as item_id, borrow_date, due_date, return_date
	from %s where user_id = $1 order by borrow_date desc`, t.fkCol, t.loans)

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, q, userID); err != nil {
		return nil, err
	}
	for i := range loans {
		loans[i].Kind = kind
	}
	return loans, nil
}
