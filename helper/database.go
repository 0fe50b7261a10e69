package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for the Postgres
// graph and chunk stores.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// MaxOpenConns bounds the connection pool; graph lookup concurrency is
	// capped by this value.
	MaxOpenConns int
}

// NewDatabaseConfiguration builds a configuration from environment
// variables, loading a .env file first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:         os.Getenv("GRAPHRAG_DB_HOST"),
		Port:         os.Getenv("GRAPHRAG_DB_PORT"),
		User:         os.Getenv("GRAPHRAG_DB_USER"),
		Password:     os.Getenv("GRAPHRAG_DB_PASSWORD"),
		Name:         os.Getenv("GRAPHRAG_DB_NAME"),
		SSLMode:      os.Getenv("GRAPHRAG_DB_SSLMODE"),
		MaxOpenConns: 10,
	}

	if config.Host == "" || config.Port == "" || config.User == "" || config.Name == "" {
		return nil, NewError("database configuration", fmt.Errorf("GRAPHRAG_DB_HOST, GRAPHRAG_DB_PORT, GRAPHRAG_DB_USER and GRAPHRAG_DB_NAME must be set"))
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// Database wraps a sql.DB instance together with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a Postgres connection and verifies it with a ping.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Name, config.SSLMode,
	)

	instance, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, NewError("open database", err)
	}
	instance.SetMaxOpenConns(config.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := instance.PingContext(ctx); err != nil {
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}, nil
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.Instance.Close()
}
