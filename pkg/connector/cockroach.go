package connector

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// GetCockroachConnector открывает пул соединений и сразу проверяет доступность базы
func GetCockroachConnector(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn) // cockroach работает с драйвером postgres
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
