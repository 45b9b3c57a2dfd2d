package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// ParsePort parses a decimal TCP port and checks it is in 1-65535.
func ParsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", p)
	}
	return p, nil
}

// SplitUserHostPort parses "[user@]host[:port]".  Missing parts come back
// as "" or defPort.
func SplitUserHostPort(spec string, defPort int) (user, host string, port int, err error) {
	if at := strings.LastIndexByte(spec, '@'); at >= 0 {
		user, spec = spec[:at], spec[at+1:]
	}
	host, port = spec, defPort
	if h, p, splitErr := net.SplitHostPort(spec); splitErr == nil {
		host = h
		if port, err = ParsePort(p); err != nil {
			return "", "", 0, err
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("missing host in %q", spec)
	}
	return user, host, port, nil
}
