// Package vhost selects the configured site for a request's Host header.
package vhost

import (
	"errors"
	"net/url"

	"github.com/yanshuy/vhost-server/internal/config"
)

var ErrNoMatchingHost = errors.New("no matching host")

// Resolver scans the configured hosts in order. It only reads from the
// slice it was given, so one Resolver may be shared by all connections.
type Resolver struct {
	hosts []config.Host
}

func NewResolver(hosts []config.Host) *Resolver {
	return &Resolver{hosts: hosts}
}

// Resolve returns the first host whose name equals the host part of
// hostHeader. A port in the header is ignored; names are compared byte for
// byte.
func (r *Resolver) Resolve(hostHeader string) (*config.Host, error) {
	name, err := HostName(hostHeader)
	if err != nil {
		return nil, err
	}
	for i := range r.hosts {
		if r.hosts[i].Name == name {
			return &r.hosts[i], nil
		}
	}
	return nil, ErrNoMatchingHost
}

// HostName parses a Host header value as a URI authority and returns the
// host without its port.
func HostName(hostHeader string) (string, error) {
	if hostHeader == "" {
		return "", ErrNoMatchingHost
	}
	u, err := url.Parse("//" + hostHeader)
	if err != nil || u.User != nil || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", ErrNoMatchingHost
	}
	name := u.Hostname()
	if name == "" {
		return "", ErrNoMatchingHost
	}
	return name, nil
}
