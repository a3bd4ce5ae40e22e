package probe

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// BookkeepingTable receives one marker row per successful database probe.
// Rows are never read back or cleaned up.
const BookkeepingTable = "test_connectivity"

// MarkerText is the literal written into test_result.
const MarkerText = "Test successful"

// Dialect holds the engine-specific SQL and connection details. Table and
// marker are fixed literals, so none of the statements take arguments.
type Dialect struct {
	Name             string
	Driver           string
	DefaultPort      string
	VersionQuery     string
	TableExistsQuery string
	CreateTable      string
	InsertMarker     string
	DSN              func(addr, user, password, database string) string
}

var MySQL = Dialect{
	Name:             "MySQL",
	Driver:           "mysql",
	DefaultPort:      "3306",
	VersionQuery:     "SELECT VERSION()",
	// "_" is a LIKE wildcard; escaped so only the exact name matches.
	TableExistsQuery: "SHOW TABLES LIKE '" + strings.ReplaceAll(BookkeepingTable, "_", `\_`) + "'",
	CreateTable: `CREATE TABLE ` + BookkeepingTable + ` (
    id INT AUTO_INCREMENT PRIMARY KEY,
    test_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    test_result VARCHAR(255)
)`,
	InsertMarker: "INSERT INTO " + BookkeepingTable + " (test_result) VALUES ('" + MarkerText + "')",
	DSN: func(addr, user, password, database string) string {
		cfg := mysql.NewConfig()
		cfg.User = user
		cfg.Passwd = password
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.DBName = database
		return cfg.FormatDSN()
	},
}

var Postgres = Dialect{
	Name:         "PostgreSQL",
	Driver:       "pgx",
	DefaultPort:  "5432",
	VersionQuery: "SHOW server_version",
	TableExistsQuery: "SELECT 1 FROM information_schema.tables " +
		"WHERE table_schema = current_schema() AND table_name = '" + BookkeepingTable + "'",
	CreateTable: `CREATE TABLE ` + BookkeepingTable + ` (
    id SERIAL PRIMARY KEY,
    test_time TIMESTAMPTZ DEFAULT now(),
    test_result VARCHAR(255)
)`,
	InsertMarker: "INSERT INTO " + BookkeepingTable + " (test_result) VALUES ('" + MarkerText + "')",
	DSN: func(addr, user, password, database string) string {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   addr,
			Path:   "/" + database,
		}
		return u.String()
	},
}

// Engines lists the accepted --db-engine values.
var Engines = []string{"mysql", "postgres"}

func DialectFor(engine string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "mysql", "":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unknown database engine %q (want one of %s)", engine, strings.Join(Engines, ", "))
	}
}

// endpointAddr appends the default port unless endpoint already carries one.
func endpointAddr(endpoint, defaultPort string) string {
	endpoint = strings.TrimSpace(endpoint)
	if host, port, err := net.SplitHostPort(endpoint); err == nil && port != "" {
		return net.JoinHostPort(host, port)
	}
	return net.JoinHostPort(strings.Trim(endpoint, "[]"), defaultPort)
}
