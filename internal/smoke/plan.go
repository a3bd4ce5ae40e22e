package smoke

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/hamed0406/deploysmoke/internal/config"
	"github.com/hamed0406/deploysmoke/internal/probe"
	"github.com/hamed0406/deploysmoke/internal/report"
)

// LoadBalancerURL is the plain-HTTP root of the load balancer. IPv6
// literals are bracketed.
func LoadBalancerURL(host string) string {
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	u := url.URL{Scheme: "http", Host: host, Path: "/"}
	return u.String()
}

// HealthURL is the secondary health endpoint on its own port.
func HealthURL(host string, port int, path string) string {
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: path}
	return u.String()
}

// Plan builds the four steps in their fixed order: load balancer, health
// endpoint, database, object storage.
func Plan(cfg *config.Config, out *report.Reporter) ([]Step, error) {
	dialect, err := probe.DialectFor(cfg.DBEngine)
	if err != nil {
		return nil, err
	}

	if cfg.InsecureSkipVerify {
		out.Error("TLS certificate verification is disabled for the HTTP probes")
	}
	client := probe.NewHTTPClient(probe.DefaultHTTPTimeout, cfg.InsecureSkipVerify)

	db := probe.NewDBChecker(probe.DBTarget{
		Endpoint: cfg.DBEndpoint,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	}, dialect, out)

	return []Step{
		{
			Title:   "Checking load balancer connectivity",
			Checker: probe.NewHTTPChecker("Load balancer", LoadBalancerURL(cfg.LBDNSName), out, probe.WithHTTPClient(client)),
		},
		{
			Title:   "Checking health endpoint",
			Checker: probe.NewHTTPChecker("Health endpoint", HealthURL(cfg.LBDNSName, cfg.HealthPort, cfg.HealthPath), out, probe.WithHTTPClient(client)),
		},
		{
			Title:   "Testing database connectivity",
			Checker: db,
		},
		{
			Title:   "Testing object storage connectivity",
			Checker: probe.NewStorageChecker(cfg.Bucket, cfg.VerifyListing, probe.NewS3Client(cfg.Region), out),
		},
	}, nil
}
