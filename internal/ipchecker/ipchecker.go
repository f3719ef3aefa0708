// Package ipchecker finds the client IP of an HTTP request and gates
// handlers to clients inside a trusted subnet.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/hourstracker/internal/logger"
)

// IPChecker holds the trusted subnet. A nil subnet trusts nobody.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New parses trustedSubnet in CIDR notation (e.g. "192.168.1.0/24").
// An empty string gives a checker that rejects every client.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{
			trustedSubnet: nil,
		}, nil
	}
	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/New(): error while `net.ParseCIDR()` calling: %w", err)
	}
	return &IPChecker{
		trustedSubnet: allowedNet,
	}, nil
}

func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && clientIP != nil && checker.trustedSubnet.Contains(clientIP)
}

// GetClientIP looks at X-Real-IP, then the first X-Forwarded-For entry,
// then RemoteAddr.
func (checker *IPChecker) GetClientIP(request *http.Request) (net.IP, error) {
	if ip := net.ParseIP(strings.TrimSpace(request.Header.Get("X-Real-IP"))); ip != nil {
		return ip, nil
	}
	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip, nil
		}
	}
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/GetClientIP(): error while `net.SplitHostPort()` calling: %w", err)
	}
	return net.ParseIP(host), nil
}

// OnlyTrusted answers 403 to every client outside the trusted subnet.
func (checker *IPChecker) OnlyTrusted(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		clientIP, err := checker.GetClientIP(request)
		if err != nil {
			logger.Log.Debugln("Error calling the `checker.GetClientIP()`: ", zap.Error(err))
			response.WriteHeader(http.StatusForbidden)
			return
		}

		if !checker.Check(clientIP) {
			logger.Log.Debugln("rejected untrusted client", "ip", clientIP.String())
			response.WriteHeader(http.StatusForbidden)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
