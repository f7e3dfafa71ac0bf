// Package testpostgres starts a disposable PostgreSQL server for integration tests.
package testpostgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitabwire/util"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgreSQLMaxIdentifiersCharLength = 60

	// PostgresqlDBImage is the PostgreSQL Image.
	PostgresqlDBImage = "postgres:17-alpine"

	DBUser     = "i18n"
	DBPassword = "i18n-s3cret"
	DBName     = "i18n_test"

	// OccurrenceValue is the number of occurrences to wait for in the log pattern.
	OccurrenceValue = 2
	// TimeoutInSeconds is the timeout duration for container startup in seconds.
	TimeoutInSeconds = 60
)

var invalidIdentifierChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Server is a running PostgreSQL container.
type Server struct {
	container *tcPostgres.PostgresContainer
	uri       string
}

// Start runs a PostgreSQL container and waits until it accepts connections.
func Start(ctx context.Context) (*Server, error) {
	pgContainer, err := tcPostgres.Run(ctx, PostgresqlDBImage,
		tcPostgres.WithDatabase(DBName),
		tcPostgres.WithUsername(DBUser),
		tcPostgres.WithPassword(DBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(OccurrenceValue).
				WithStartupTimeout(TimeoutInSeconds*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	uri, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to read postgres connection string: %w", err)
	}

	return &Server{container: pgContainer, uri: uri}, nil
}

// URI is the connection string of the default database.
func (s *Server) URI() string {
	return s.uri
}

// Stop terminates the container.
func (s *Server) Stop(ctx context.Context) {
	if err := s.container.Terminate(ctx); err != nil {
		util.Log(ctx).WithError(err).Warn("could not terminate postgres container")
	}
}

// RandomisedURI creates, if needed, a database whose name ends with prefix and returns its
// connection string together with a function that empties it again. Each test suite can use
// its own database on one server.
func (s *Server) RandomisedURI(ctx context.Context, prefix string) (string, func(context.Context), error) {
	connectionURI, err := url.Parse(s.uri)
	if err != nil {
		return "", func(_ context.Context) {}, err
	}

	newDatabaseName := suffixedDatabaseName(connectionURI, prefix)

	connectionURI, err = ensureDatabaseExists(ctx, connectionURI, newDatabaseName)
	if err != nil {
		return "", func(_ context.Context) {}, err
	}

	uri := connectionURI.String()
	return uri, func(ctx context.Context) {
		if clearErr := clearDatabase(ctx, uri); clearErr != nil {
			util.Log(ctx).WithError(clearErr).Warn("could not clear test database")
		}
	}, nil
}

// ensureDatabaseExists checks if a specific database exists and creates it if it does not.
func ensureDatabaseExists(ctx context.Context, postgresURI *url.URL, newDBName string) (*url.URL, error) {
	pool, err := pgxpool.New(ctx, postgresURI.String())
	if err != nil {
		return postgresURI, err
	}
	defer pool.Close()

	if err = pool.Ping(ctx); err != nil {
		return postgresURI, err
	}

	_, err = pool.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %s;`, newDBName))
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || (pgErr.Code != "42P04" && pgErr.Code != "23505") {
			return postgresURI, err
		}
	}

	cp := *postgresURI
	cp.Path = newDBName
	return &cp, nil
}

func clearDatabase(ctx context.Context, connectionString string) error {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP SCHEMA public CASCADE; CREATE SCHEMA public;`)
	return err
}

// suffixedDatabaseName builds a valid PostgreSQL database name from the URL path and prefix.
func suffixedDatabaseName(currentURI *url.URL, prefix string) string {
	pathPart := strings.ReplaceAll(currentURI.Path, "/", "")
	if pathPart == "" {
		pathPart = "db"
	}

	maxPathLength := postgreSQLMaxIdentifiersCharLength - len(prefix)
	if len(pathPart) > maxPathLength {
		pathPart = pathPart[:maxPathLength]
	}

	result := invalidIdentifierChars.ReplaceAllString(fmt.Sprintf("%s_%s", pathPart, prefix), "_")
	// unquoted identifiers are folded to lowercase
	return strings.ToLower(result)
}
