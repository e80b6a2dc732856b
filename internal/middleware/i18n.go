package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"golang.org/x/text/language"

	"donorcrm/internal/messages"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// countryHeaders are set by the edge proxy, most specific first.
var countryHeaders = []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry"}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N picks the response locale (en or ur) and the caller's country for
// donor defaults, and stores both in the request context.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country := ResolveCountry(r, lookup); country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	explicit := strings.TrimSpace(r.Header.Get("X-Locale"))
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if explicit == "" && accept == "" {
		explicit = fallback
	}
	base, _ := messages.Match(explicit, accept).Base()
	return base.String()
}

// ClientIP returns the first valid X-Forwarded-For hop, else the host of
// RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the negotiated locale, "en" when unset.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}

func CountryFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CountryKey).(string)
	return v
}

// ResolveCountry returns a best-effort ISO country code: proxy headers,
// then an explicit region in X-Locale or Accept-Language, then GeoIP.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range countryHeaders {
		val := strings.TrimSpace(r.Header.Get(key))
		if val != "" && !strings.EqualFold(val, "XX") {
			return strings.ToUpper(val)
		}
	}
	for _, key := range []string{"X-Locale", "Accept-Language"} {
		if region := explicitRegion(r.Header.Get(key)); region != "" {
			return region
		}
	}
	if lookup == nil {
		return ""
	}
	ip := ClientIP(r)
	if ip == "" {
		return ""
	}
	country, err := lookup(ip)
	if err != nil {
		return ""
	}
	return strings.ToUpper(country)
}

// explicitRegion returns the region subtag the caller actually wrote; a bare
// language such as "en" does not imply a country.
func explicitRegion(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if region, conf := tag.Region(); conf == language.Exact {
			return region.String()
		}
	}
	return ""
}
