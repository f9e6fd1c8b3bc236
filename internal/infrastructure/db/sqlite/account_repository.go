package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/99minutos/storefront/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository on the users store.
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type accountRow struct {
	ID        int64          `db:"id"`
	Username  string         `db:"username"`
	Password  string         `db:"password"`
	Email     sql.NullString `db:"email"`
	IsAdmin   bool           `db:"is_admin"`
	CreatedAt timestamp      `db:"created_at"`
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email.String,
		PasswordHash: r.Password,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt.Time(),
	}
}

const accountColumns = `id, username, password, email, is_admin, created_at`

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password, email, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		account.Username,
		account.PasswordHash,
		sql.NullString{String: account.Email, Valid: account.Email != ""},
		account.IsAdmin,
		timestamp(account.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *account
	created.ID = id
	return &created, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var row accountRow
	err := r.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	account := row.toDomain()
	return &account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+accountColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toDomain())
	}
	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
