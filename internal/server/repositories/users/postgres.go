package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/dbx"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
)

const userColumns = `id, username, email, phone, level, club, motivation, has_laptop, accepted, created_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 ORDER BY id
		 `
	return r.queryUsers(ctx, r.db, query)
}

func (r *PostgresRepository) ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE accepted = $1
		 ORDER BY id
		 `
	return r.queryUsers(ctx, r.db, query, accepted)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `
	return r.queryUser(ctx, r.db, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `
	return r.queryUser(ctx, r.db, query, n)
}

// Create checks for the email and inserts inside one transaction. The UNIQUE
// constraint on email catches writers that slip between the two statements.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", user.CreatedAt, err)
	}

	stored := user.Clone()

	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, user.Email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if exists {
			return common.ErrorAlreadyExists
		}

		query :=
			`INSERT INTO users (username, email, phone, level, club, motivation, has_laptop, accepted, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id
			 `
		err = tx.QueryRowContext(ctx, query,
			user.Username, user.Email, user.Phone, user.Level, user.Club, user.Motivation,
			user.HasLaptop, user.Accepted, createdAt).Scan(&stored.ID)
		if err != nil {
			if dbx.IsUniqueViolation(err) {
				return common.ErrorAlreadyExists
			}
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (r *PostgresRepository) UpdateAccepted(ctx context.Context, id string, accepted *bool) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `UPDATE users SET accepted = $1 WHERE id = $2`, accepted, n)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	_, err = dbx.Affected(res, true)
	return err
}

func (r *PostgresRepository) ResetAccepted(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET accepted = NULL`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return dbx.Affected(res, false)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var accepted sql.NullBool
	var createdAt time.Time

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.Level, &u.Club, &u.Motivation,
		&u.HasLaptop, &accepted, &createdAt)
	if err != nil {
		return nil, err
	}

	if accepted.Valid {
		u.Accepted = models.BoolPtr(accepted.Bool)
	}
	u.CreatedAt = createdAt.UTC().Format(models.CreatedAtLayout)
	return u, nil
}

func (r *PostgresRepository) queryUser(ctx context.Context, db dbx.DBTX, query string, args ...any) (*models.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) queryUsers(ctx context.Context, db dbx.DBTX, query string, args ...any) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
