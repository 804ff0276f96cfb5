package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
)

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "year", "category", "isbn").
		Values(req.Title, req.Author, req.Year, req.Category, req.ISBN).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, wrapPgErr(err)
	}
	return book, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	query, args, err := qb.Select("*").
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, category string, page, size int) (model.ListBooks, error) {
	q := qb.Select("*").
		From(booksTableName).
		OrderBy("id")
	if category != "" {
		q = q.Where(sq.Eq{"category": category})
	}
	q = paginate(q, page, size)

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int) error {
	return r.deleteItem(ctx, booksTableName, id)
}

func (r *repository) CreateJournal(ctx context.Context, req model.CreateJournalRequest) (model.Journal, error) {
	query, args, err := qb.Insert(journalsTableName).
		Columns("title", "volume", "issue", "year", "issn").
		Values(req.Title, req.Volume, req.Issue, req.Year, req.ISSN).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Journal{}, err
	}

	var journal model.Journal
	if err := r.db.GetContext(ctx, &journal, query, args...); err != nil {
		r.log.Error("CreateJournal", zap.String("q", query), zap.Error(err))
		return model.Journal{}, wrapPgErr(err)
	}
	return journal, nil
}

func (r *repository) GetJournal(ctx context.Context, id int) (model.Journal, error) {
	query, args, err := qb.Select("*").
		From(journalsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Journal{}, err
	}

	var journal model.Journal
	if err := r.db.GetContext(ctx, &journal, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Journal{}, errs.ErrNotFound
		}
		return model.Journal{}, err
	}
	return journal, nil
}

func (r *repository) ListJournals(ctx context.Context, page, size int) (model.ListJournals, error) {
	q := paginate(qb.Select("*").From(journalsTableName).OrderBy("id"), page, size)

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListJournals{}, err
	}

	var journals []model.Journal
	if err := r.db.SelectContext(ctx, &journals, query, args...); err != nil {
		return model.ListJournals{}, err
	}

	return model.ListJournals{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(journals),
		},
		Items: journals,
	}, nil
}

func (r *repository) DeleteJournal(ctx context.Context, id int) error {
	return r.deleteItem(ctx, journalsTableName, id)
}

func (r *repository) CreateReport(ctx context.Context, req model.CreateReportRequest) (model.ResearchReport, error) {
	query, args, err := qb.Insert(reportsTableName).
		Columns("title", "author", "supervisor", "institution", "year", "type").
		Values(req.Title, req.Author, req.Supervisor, req.Institution, req.Year, req.Type).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.ResearchReport{}, err
	}

	var report model.ResearchReport
	if err := r.db.GetContext(ctx, &report, query, args...); err != nil {
		r.log.Error("CreateReport", zap.String("q", query), zap.Error(err))
		return model.ResearchReport{}, wrapPgErr(err)
	}
	return report, nil
}

func (r *repository) GetReport(ctx context.Context, id int) (model.ResearchReport, error) {
	query, args, err := qb.Select("*").
		From(reportsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.ResearchReport{}, err
	}

	var report model.ResearchReport
	if err := r.db.GetContext(ctx, &report, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ResearchReport{}, errs.ErrNotFound
		}
		return model.ResearchReport{}, err
	}
	return report, nil
}

func (r *repository) ListReports(ctx context.Context, page, size int) (model.ListReports, error) {
	q := paginate(qb.Select("*").From(reportsTableName).OrderBy("id"), page, size)

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListReports{}, err
	}

	var reports []model.ResearchReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return model.ListReports{}, err
	}

	return model.ListReports{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(reports),
		},
		Items: reports,
	}, nil
}

func (r *repository) DeleteReport(ctx context.Context, id int) error {
	return r.deleteItem(ctx, reportsTableName, id)
}

func (r *repository) deleteItem(ctx context.Context, table string, id int) error {
	query, args, err := qb.Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapPgErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
