package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"creator-dashboard/infrastructure/configuration"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB creates a sql.DB for PostgreSQL using native database/sql.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
