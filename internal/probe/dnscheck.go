package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNSClass summarises why a host did or did not resolve.
type DNSClass string

const (
	DNSResolves        DNSClass = "RESOLVES"
	DNSNXDomain        DNSClass = "NXDOMAIN"
	DNSNoARecord       DNSClass = "NO_A_RECORD"
	DNSServfailTimeout DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName     DNSClass = "INVALID_NAME"
)

type DNSStatus struct {
	Domain        string
	IPs           []net.IP
	CNAME         string
	Nameservers   []string
	Class         DNSClass
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// DiagnoseDNS classifies host using the OS resolver. It is only consulted
// after a transport failure, to tell a dead listener from a bad name.
func DiagnoseDNS(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(host)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") {
		s.Class = DNSInvalidName
		return s
	}

	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", s.Domain)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = DNSResolves
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSServfailTimeout
			}
		}
	}
	if s.Class == DNSResolves {
		return s
	}

	if cname, err := r.LookupCNAME(ctx, s.Domain); err == nil && !strings.EqualFold(cname, s.Domain+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}

	if ns, err := r.LookupNS(ctx, s.Domain); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == DNSNXDomain || s.Class == "" {
			s.Class = DNSNoARecord
		}
	}

	if s.Class == "" {
		if s.ResolverError != "" {
			s.Class = DNSServfailTimeout
		} else {
			s.Class = DNSNXDomain
		}
	}
	return s
}

// Detail renders the class plus any CNAME and nameservers found, for
// appending to a failure line.
func (s DNSStatus) Detail() string {
	out := "dns=" + string(s.Class)
	if s.CNAME != "" {
		out += " cname=" + s.CNAME
	}
	if len(s.Nameservers) > 0 {
		out += " ns=" + strings.Join(s.Nameservers, ",")
	}
	return out
}
