package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
)

func (r *repository) InsertAudit(ctx context.Context, ev model.AuditEvent) error {
	var details *string
	if ev.Details != "" {
		details = &ev.Details
	}
	query, args, err := qb.Insert(auditLogsTableName).
		Columns("user_id", "action", "entity", "details", "created_at").
		Values(ev.UserID, ev.Action, ev.Entity, details, ev.Timestamp).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.log.Error("InsertAudit", zap.String("q", query), zap.Error(err))
		return wrapPgErr(err)
	}
	return nil
}

func (r *repository) ListAudit(ctx context.Context, page, size int) (model.ListAudit, error) {
	q := paginate(qb.Select("*").From(auditLogsTableName).OrderBy("id desc"), page, size)

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListAudit{}, err
	}

	var logs []model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return model.ListAudit{}, err
	}

	return model.ListAudit{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(logs),
		},
		Items: logs,
	}, nil
}

func (r *repository) CreateTarget(ctx context.Context, req model.CreateTargetRequest) (model.BookTarget, error) {
	query, args, err := qb.Insert(bookTargetsTableName).
		Columns("user_id", "year", "category", "target").
		Values(req.UserID, req.Year, req.Category, req.Target).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.BookTarget{}, err
	}

	var target model.BookTarget
	if err := r.db.GetContext(ctx, &target, query, args...); err != nil {
		r.log.Error("CreateTarget", zap.String("q", query), zap.Error(err))
		return model.BookTarget{}, wrapPgErr(err)
	}
	return target, nil
}

func (r *repository) ListTargets(ctx context.Context, userID, year int) ([]model.BookTarget, error) {
	q := qb.Select("*").
		From(bookTargetsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("year desc", "id")
	if year != 0 {
		q = q.Where(sq.Eq{"year": year})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var targets []model.BookTarget
	if err := r.db.SelectContext(ctx, &targets, query, args...); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		// distinguish "user has no targets" from "user does not exist"
		if _, err := r.GetUser(ctx, userID); err != nil {
			return nil, errs.ErrNotFound
		}
	}
	return targets, nil
}
