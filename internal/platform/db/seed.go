package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"flms/internal/domain/auth"
	"flms/internal/platform/config"
)

// Seed makes sure a bootstrap admin account exists so a fresh deployment
// can log in and create the rest of the directory.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(strings.ToLower(cfg.SeedAdminEmail))
	if email == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var existing string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO employees (name, email, role, joining_date, password_hash)
    VALUES ($1,$2,$3,now(),$4)
  `, "Administrator", email, auth.RoleAdmin, hash)
	return err
}
