package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bankman/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, name, balance, registered_at, interaction_count
		 FROM users WHERE user_id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Balance, &user.RegisteredAt, &user.Interactions)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, balance, registered_at, interaction_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Balance, user.RegisteredAt, user.Interactions,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// IncrementInteractions はインタラクションカウンターをアトミックに
// インクリメントし、更新後の値を返す。
// 読んで足して書き戻すのではなくSQL側で加算するため、
// 並行実行でもカウントが失われない。
func (r *PostgresUserRepo) IncrementInteractions(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET interaction_count = interaction_count + 1
		 WHERE user_id = $1
		 RETURNING interaction_count`,
		id,
	).Scan(&count)

	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment interactions: %w", err)
	}

	return count, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
