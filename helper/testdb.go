package helper

import (
	"context"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName     = "graphrag_test"
	testDatabaseUser     = "postgres"
	testDatabasePassword = "postgres"
)

// MustStartPostgresContainer starts a pgvector-enabled Postgres container and
// returns its teardown function and mapped port.
func MustStartPostgresContainer() (func(context.Context, ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	dbContainer, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	mappedPort, err := dbContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, "", NewError("get mapped port", err)
	}

	return dbContainer.Terminate, mappedPort.Port(), nil
}

// SetTestDatabaseConfigEnvs sets the database environment variables for the
// duration of a test.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("GRAPHRAG_DB_HOST", "localhost")
	t.Setenv("GRAPHRAG_DB_PORT", port)
	t.Setenv("GRAPHRAG_DB_USER", testDatabaseUser)
	t.Setenv("GRAPHRAG_DB_PASSWORD", testDatabasePassword)
	t.Setenv("GRAPHRAG_DB_NAME", testDatabaseName)
	t.Setenv("GRAPHRAG_DB_SSLMODE", "disable")
}

// NewTestDatabase connects to the test container database and fails hard on
// error, for use in TestMain style setups.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
	}))

	database, err := NewDatabase(config.Name, config, logger)
	if err != nil {
		log.Fatalf("error connecting to test database: %v", err)
	}
	return database
}
