package database

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/fs"
)

const (
	migrationsDir = "migrations"
	maintenanceDB = "postgres"
	readyAttempts = 30
)

func init() {
	goose.SetBaseFS(appfs.FS)
}

// dsn builds the connection URL for dbName, as the admin role when asAdmin is set and one is configured.
func dsn(conf core.DatabaseConfig, dbName string, asAdmin bool) string {
	creds := url.UserPassword(conf.User, conf.Password)
	if asAdmin && conf.AdminUser != "" {
		creds = url.UserPassword(conf.AdminUser, conf.AdminPassword)
	}
	q := url.Values{}
	q.Set("timezone", "utc")
	if conf.DisableTLS {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "require")
	}
	u := url.URL{
		Scheme:   conf.Engine,
		User:     creds,
		Host:     conf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens the app database without checking it is reachable.
func Open(conf *core.Config) (*sql.DB, error) {
	return sql.Open(conf.Database.Engine, dsn(conf.Database, conf.Database.Name, false))
}

// OpenX opens the app database, waits for it and wraps it for sqlx.
func OpenX(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Database.Engine, dsn(conf.Database, conf.Database.Name, false))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = waitReady(context.Background(), db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// waitReady pings db until it answers, backing off linearly.
func waitReady(ctx context.Context, db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= readyAttempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for database")
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "database not ready")
}

// CreateIfNotExist creates the app role (as admin) then the app database (as the app role).
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	dbc := conf.Database

	admin, err := sqlx.Open(dbc.Engine, dsn(dbc, maintenanceDB, true))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = admin.Close() }()
	if err = waitReady(ctx, admin.DB); err != nil {
		return err
	}
	if dbc.User != "" {
		stmt := "CREATE USER " + pq.QuoteIdentifier(dbc.User) + " CREATEDB ENCRYPTED PASSWORD " + pq.QuoteLiteral(dbc.Password)
		if err = execUnless(ctx, admin, "SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", dbc.User, stmt); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}

	app, err := sqlx.Open(dbc.Engine, dsn(dbc, maintenanceDB, false))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = app.Close() }()
	stmt := "CREATE DATABASE " + pq.QuoteIdentifier(dbc.Name)
	if err = execUnless(ctx, app, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbc.Name, stmt); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// execUnless runs stmt when the exists query answers false for name.
func execUnless(ctx context.Context, db *sqlx.DB, existsQuery, name, stmt string) error {
	var exists bool
	if err := db.GetContext(ctx, &exists, existsQuery, name); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err := db.ExecContext(ctx, stmt)
	return err
}

// Run runs a goose command against the embedded migrations.
func Run(command string, db *sql.DB, args ...string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Run(command, db, migrationsDir, args...)
}

// Migrate applies every pending migration.
func Migrate(db *sql.DB) error {
	return errors.Wrap(Run("up", db), "migrating database")
}
