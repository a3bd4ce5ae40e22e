package probe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hamed0406/deploysmoke/internal/report"
)

// DBTarget is where the database probe connects.
type DBTarget struct {
	Endpoint string
	User     string
	Password string
	Database string
}

// DBChecker connects, reads the server version, ensures the bookkeeping
// table exists and commits one marker row. The first failing step ends it.
type DBChecker struct {
	Label   string
	Target  DBTarget
	Dialect Dialect
	Out     *report.Reporter
	// Open defaults to sql.Open; tests swap in sqlmock.
	Open func(driver, dsn string) (*sql.DB, error)
}

func NewDBChecker(target DBTarget, dialect Dialect, out *report.Reporter) *DBChecker {
	return &DBChecker{
		Label:   "Database",
		Target:  target,
		Dialect: dialect,
		Out:     reporterOr(out),
		Open:    sql.Open,
	}
}

func (c *DBChecker) Check(ctx context.Context) Result {
	start := time.Now()
	if err := c.run(ctx); err != nil {
		msg := fmt.Sprintf("Database connection failed: %v", err)
		c.Out.Error(msg)
		return failed(c.Label, msg, err, start)
	}
	msg := "Successfully wrote to database"
	c.Out.Success(msg)
	return passed(c.Label, msg, start)
}

func (c *DBChecker) run(ctx context.Context) error {
	open := c.Open
	if open == nil {
		open = sql.Open
	}
	addr := endpointAddr(c.Target.Endpoint, c.Dialect.DefaultPort)
	db, err := open(c.Dialect.Driver, c.Dialect.DSN(addr, c.Target.User, c.Target.Password, c.Target.Database))
	if err != nil {
		return fmt.Errorf("open %s: %w", addr, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	var version string
	if err := conn.QueryRowContext(ctx, c.Dialect.VersionQuery).Scan(&version); err != nil {
		return fmt.Errorf("query server version: %w", err)
	}
	c.Out.Success(fmt.Sprintf("Database connection successful (%s version: %s)", c.Dialect.Name, version))

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	exists, err := tableExists(ctx, tx, c.Dialect.TableExistsQuery)
	if err != nil {
		return fmt.Errorf("look up table %s: %w", BookkeepingTable, err)
	}
	if !exists {
		if _, err := tx.ExecContext(ctx, c.Dialect.CreateTable); err != nil {
			return fmt.Errorf("create table %s: %w", BookkeepingTable, err)
		}
	}

	if _, err := tx.ExecContext(ctx, c.Dialect.InsertMarker); err != nil {
		return fmt.Errorf("insert marker row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func tableExists(ctx context.Context, tx *sql.Tx, query string) (bool, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}
