package probe

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
)

func TestDialectFor(t *testing.T) {
	cases := map[string]string{
		"":           "MySQL",
		"mysql":      "MySQL",
		"MySQL":      "MySQL",
		"postgres":   "PostgreSQL",
		"postgresql": "PostgreSQL",
	}
	for in, want := range cases {
		d, err := DialectFor(in)
		if err != nil {
			t.Fatalf("DialectFor(%q): %v", in, err)
		}
		if d.Name != want {
			t.Fatalf("DialectFor(%q) = %s, want %s", in, d.Name, want)
		}
	}
	if _, err := DialectFor("oracle"); err == nil {
		t.Fatal("want error for unknown engine")
	}
}

func TestEndpointAddr(t *testing.T) {
	cases := []struct{ in, want string }{
		{"db.example.internal", "db.example.internal:3306"},
		{"db.example.internal:3307", "db.example.internal:3307"},
		{" 10.0.0.5 ", "10.0.0.5:3306"},
		{"::1", "[::1]:3306"},
		{"[::1]:4000", "[::1]:4000"},
	}
	for _, c := range cases {
		if got := endpointAddr(c.in, "3306"); got != c.want {
			t.Fatalf("endpointAddr(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQL.DSN("db:3306", "admin", "p@ss:word", "applicationdb")
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if cfg.User != "admin" || cfg.Passwd != "p@ss:word" || cfg.Addr != "db:3306" || cfg.DBName != "applicationdb" || cfg.Net != "tcp" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := Postgres.DSN("db:5432", "admin", "p@ss/word", "applicationdb")
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("ParseConfig(%q): %v", dsn, err)
	}
	if cfg.User != "admin" || cfg.Password != "p@ss/word" || cfg.Host != "db" || cfg.Port != 5432 || cfg.Database != "applicationdb" {
		t.Fatalf("unexpected config host=%s port=%d user=%s db=%s", cfg.Host, cfg.Port, cfg.User, cfg.Database)
	}
}

func TestMySQLTableLookupMatchesExactName(t *testing.T) {
	want := `SHOW TABLES LIKE 'test\_connectivity'`
	if MySQL.TableExistsQuery != want {
		t.Fatalf("TableExistsQuery = %q, want %q", MySQL.TableExistsQuery, want)
	}
}

func TestDialectStatementsUseFixedTable(t *testing.T) {
	for _, d := range []Dialect{MySQL, Postgres} {
		if !strings.Contains(strings.ReplaceAll(d.TableExistsQuery, `\_`, "_"), BookkeepingTable) {
			t.Fatalf("%s lookup does not target %s: %q", d.Name, BookkeepingTable, d.TableExistsQuery)
		}
		for _, stmt := range []string{d.CreateTable, d.InsertMarker} {
			if !strings.Contains(stmt, BookkeepingTable) {
				t.Fatalf("%s statement does not target %s: %q", d.Name, BookkeepingTable, stmt)
			}
		}
		if !strings.Contains(d.InsertMarker, "'"+MarkerText+"'") {
			t.Fatalf("%s insert lacks marker literal", d.Name)
		}
	}
}
