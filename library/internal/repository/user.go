package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
)

func (r *repository) CreateUser(ctx context.Context, in model.RegisterInput) (model.User, error) {
	query, args, err := qb.Insert(usersTableName).
		Columns("name", "email", "password", "role").
		Values(in.Name, in.Email, in.Password, in.Role).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		r.log.Error("CreateUser", zap.String("q", query), zap.Error(err))
		return model.User{}, wrapPgErr(err)
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, id int) (model.User, error) {
	query, args, err := qb.Select("*").
		From(usersTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	query, args, err := qb.Select("*").
		From(usersTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) ListUsers(ctx context.Context, uq model.UserQuery) (model.ListUsers, error) {
	q := qb.Select("*").
		From(usersTableName).
		OrderBy("id")

	if uq.Role != nil {
		q = q.Where(sq.Eq{"role": *uq.Role})
	}
	if uq.Search != "" {
		pattern := "%" + uq.Search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"email": pattern},
		})
	}
	q = paginate(q, uq.Page, uq.Limit)

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListUsers{}, err
	}
	r.log.Debug("ListUsers", zap.String("query", query), zap.Any("args", args))

	var users []model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return model.ListUsers{}, err
	}

	return model.ListUsers{
		Paging: model.Paging{
			Page:          uq.Page,
			PageSize:      uq.Limit,
			TotalElements: len(users),
		},
		Items: users,
	}, nil
}

func (r *repository) UpdateUser(ctx context.Context, id int, in model.UpdateUserInput) (model.User, error) {
	q := qb.Update(usersTableName).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("returning *")

	if in.Name != nil {
		q = q.Set("name", *in.Name)
	}
	if in.Email != nil {
		q = q.Set("email", *in.Email)
	}
	if in.Role != nil {
		q = q.Set("role", *in.Role)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, wrapPgErr(err)
	}
	return user, nil
}

func (r *repository) DeleteUser(ctx context.Context, id int) error {
	query, args, err := qb.Delete(usersTableName).
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

func (r *repository) UpdatePassword(ctx context.Context, userID int, hash string) error {
	query, args, err := qb.Update(usersTableName).
		Set("password", hash).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) CountOpenLoans(ctx context.Context, userID int) (int, error) {
	q := fmt.Sprintf(`
	select (select count(*) from %s where user_id = $1 and return_date is null)
	     + (select count(*) from %s where user_id = $1 and return_date is null)
	     + (select count(*) from %s where user_id = $1 and return_date is null)`,
		userBooksTableName, userJournalsTableName, userReportsTableName)

	var count int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreateResetToken(ctx context.Context, token string, userID int, expiresAt time.Time) error {
	query, args, err := qb.Insert(resetTokensTableName).
		Columns("token", "user_id", "expires_at").
		Values(token, userID, expiresAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return wrapPgErr(err)
	}
	return nil
}

// ConsumeResetToken marks the token used and returns its owner. A
// missing, expired or already-used token is reported as invalid.
func (r *repository) ConsumeResetToken(ctx context.Context, token string) (int, error) {
	q := fmt.Sprintf(`update %s
	set used = true
	where token = $1 and not used and expires_at > now()
	returning user_id`, resetTokensTableName)

	var userID int
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errs.ErrTokenInvalid
		}
		return 0, err
	}
	return userID, nil
}
