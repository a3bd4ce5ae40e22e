package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hamed0406/deploysmoke/internal/probe"
)

// ErrUsage marks a malformed invocation; callers print Usage and exit 2.
var ErrUsage = errors.New("usage error")

const envPrefix = "SMOKE"

type Config struct {
	LBDNSName  string // load balancer DNS name, probed on :80 and the health port
	DBEndpoint string // host or host:port
	Bucket     string
	DBPassword string

	DBUser   string
	DBName   string
	DBEngine string // "mysql" or "postgres"

	HealthPort int
	HealthPath string

	Region             string // empty means the AWS default chain decides
	VerifyListing      bool
	InsecureSkipVerify bool

	NoColor      bool
	LogDir       string // empty disables the log file
	LogLevel     string
	SlackWebhook string
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("smoketest", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.String("db-user", "admin", "database username")
	fs.String("db-name", "applicationdb", "database name")
	fs.String("db-engine", "mysql", "database engine: "+strings.Join(probe.Engines, " or "))
	fs.Int("health-port", 8080, "port of the secondary health endpoint on the load balancer")
	fs.String("health-path", "/index.html", "path of the secondary health endpoint")
	fs.String("region", "", "AWS region for the bucket (default: ambient AWS configuration)")
	fs.Bool("verify-listing", false, "list the marker object before deleting it (needs s3:ListBucket)")
	fs.Bool("insecure-skip-verify", false, "do not verify TLS certificates on the HTTP probes")
	fs.Bool("no-color", false, "print status markers without ANSI colors")
	fs.String("log-dir", "", "write a JSON run log to this directory")
	fs.String("log-level", "info", "log level for the JSON run log")
	fs.String("slack-webhook", "", "post the run summary to this Slack incoming webhook")
	return fs
}

// Usage is the help text printed on -h and on malformed invocations.
func Usage() string {
	var b strings.Builder
	b.WriteString("Usage: smoketest <lb_dns_name> <db_endpoint> <bucket_name> <db_password> [flags]\n\n")
	b.WriteString("Verify that a freshly provisioned load balancer, database and bucket are reachable.\n\n")
	b.WriteString("Flags (also read from " + envPrefix + "_<FLAG> environment variables, e.g. " + envPrefix + "_DB_USER):\n")
	b.WriteString(newFlagSet().FlagUsages())
	return b.String()
}

// Parse reads the four positionals and the optional flags from args
// (without the program name). Flags given explicitly win over SMOKE_*
// environment variables, which win over the built-in defaults.
// It returns pflag.ErrHelp untouched when -h/--help is requested.
func Parse(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	pos := fs.Args()
	if len(pos) != 4 {
		return nil, fmt.Errorf("%w: expected 4 arguments <lb_dns_name> <db_endpoint> <bucket_name> <db_password>, got %d", ErrUsage, len(pos))
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &Config{
		LBDNSName:  unbracket(strings.TrimSpace(pos[0])),
		DBEndpoint: strings.TrimSpace(pos[1]),
		Bucket:     strings.TrimSpace(pos[2]),
		DBPassword: pos[3],

		DBUser:   v.GetString("db-user"),
		DBName:   v.GetString("db-name"),
		DBEngine: strings.ToLower(v.GetString("db-engine")),

		HealthPort: v.GetInt("health-port"),
		HealthPath: v.GetString("health-path"),

		Region:             v.GetString("region"),
		VerifyListing:      v.GetBool("verify-listing"),
		InsecureSkipVerify: v.GetBool("insecure-skip-verify"),

		NoColor:      v.GetBool("no-color"),
		LogDir:       v.GetString("log-dir"),
		LogLevel:     v.GetString("log-level"),
		SlackWebhook: v.GetString("slack-webhook"),
	}
	if !strings.HasPrefix(cfg.HealthPath, "/") {
		cfg.HealthPath = "/" + cfg.HealthPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return cfg, nil
}

// unbracket turns "[::1]" into "::1"; anything else is returned as is.
func unbracket(host string) string {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}

func (c *Config) Validate() error {
	if c.LBDNSName == "" {
		return errors.New("lb_dns_name cannot be empty")
	}
	if strings.Contains(c.LBDNSName, "://") || strings.Contains(c.LBDNSName, "/") {
		return fmt.Errorf("lb_dns_name must be a bare host name, got %q", c.LBDNSName)
	}
	if _, port, err := net.SplitHostPort(c.LBDNSName); err == nil {
		return fmt.Errorf("lb_dns_name must not carry a port (got %q); use --health-port for the health endpoint", port)
	}
	if c.DBEndpoint == "" {
		return errors.New("db_endpoint cannot be empty")
	}
	if c.Bucket == "" {
		return errors.New("bucket_name cannot be empty")
	}
	if c.DBUser == "" {
		return errors.New("db user cannot be empty")
	}
	if _, err := probe.DialectFor(c.DBEngine); err != nil {
		return err
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("health port %d out of range", c.HealthPort)
	}
	return nil
}
