package fetcher

import (
	"fmt"
	"net"
	"net/url"
)

// validateURL rejects non-HTTP schemes and, when denyPrivate is set,
// hosts that resolve to loopback, private, or link-local addresses.
// This blocks SSRF through crafted or redirected article URLs.
func validateURL(u *url.URL, denyPrivate bool) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("url %q has no host", u)
	}
	if !denyPrivate {
		return nil
	}

	ips, err := net.LookupIP(u.Hostname())
	if err != nil {
		return fmt.Errorf("resolve host %q: %w", u.Hostname(), err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("host %q resolves to private address %s", u.Hostname(), ip)
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
