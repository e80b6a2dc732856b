// Package geoip resolves donor countries from client addresses using a
// MaxMind country database.
package geoip

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned by lookups on a resolver without a database.
var ErrUnavailable = errors.New("geoip: database not loaded")

// CountryResolver maps an IP address to an ISO 3166-1 alpha-2 code.
type CountryResolver interface {
	CountryCode(ip string) (string, error)
}

type countryReader interface {
	Country(ip []byte) (*geoip2.Country, error)
	io.Closer
}

// readerAdapter narrows *geoip2.Reader to countryReader.
type readerAdapter struct{ r *geoip2.Reader }

func (a readerAdapter) Country(ip []byte) (*geoip2.Country, error) { return a.r.Country(ip) }
func (a readerAdapter) Close() error                               { return a.r.Close() }

// Resolver looks countries up in an mmdb file. Addresses that can never be
// located (loopback, private ranges, link-local) resolve to "" without
// touching the database.
type Resolver struct {
	reader countryReader
}

// NewResolver opens the database at path. An empty path disables lookups
// and yields a nil resolver.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &Resolver{reader: readerAdapter{r: reader}}, nil
}

// CountryCode returns the upper-case ISO code for ip, or "" when the
// address is not routable or the database has no country for it.
func (r *Resolver) CountryCode(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	addr = addr.Unmap()
	if !routable(addr) {
		return "", nil
	}
	record, err := r.reader.Country(addr.AsSlice())
	if err != nil {
		return "", fmt.Errorf("geoip: lookup %s: %w", addr, err)
	}
	if record == nil {
		return "", nil
	}
	return strings.ToUpper(record.Country.IsoCode), nil
}

func routable(addr netip.Addr) bool {
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsUnspecified() &&
		!addr.IsMulticast()
}

// Close releases the database.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
