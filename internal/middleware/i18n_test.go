package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback string
		want     string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "UR")
				r.Header.Set("Accept-Language", "en-US")
			},
			want: "ur",
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: "en",
		},
		{
			name: "accept-language urdu preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ur-PK,en;q=0.8")
			},
			want: "ur",
		},
		{
			name: "unsupported language falls back to en",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "de-DE")
			},
			fallback: "ur",
			want:     "en",
		},
		{
			name:     "configured fallback",
			fallback: "ur",
			want:     "ur",
		},
		{
			name: "default to en",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := detectLocale(req, tc.fallback)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "pk")
				r.Header.Set("CF-IPCountry", "ae")
			},
			want: "PK",
		},
		{
			name: "unknown cloudflare country ignored",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCountry", "XX")
				r.Header.Set("Accept-Language", "en-GB")
			},
			want: "GB",
		},
		{
			name: "locale region fallback",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ur-PK")
			},
			want: "PK",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "ae", nil
			},
			want: "AE",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocaleAndCountry(t *testing.T) {
	var locale, country string
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ur-PK")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if locale != "ur" || country != "PK" {
		t.Fatalf("got locale %q country %q", locale, country)
	}
	if rr.Header().Get("Content-Language") != "ur" {
		t.Fatalf("Content-Language = %q", rr.Header().Get("Content-Language"))
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "ur")
	if got := LocaleFromContext(ctx); got != "ur" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "ur")
	}
}

func TestExplicitRegion(t *testing.T) {
	cases := map[string]string{
		"en":                "",
		"ur-PK,en;q=0.8":    "PK",
		"en;q=0.9,en-GB":    "GB",
		"":                  "",
		"not a language!!!": "",
	}
	for in, want := range cases {
		if got := explicitRegion(in); got != want {
			t.Fatalf("explicitRegion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if got := ClientIP(req); got != "10.0.0.7" {
		t.Fatalf("ClientIP() = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "39.32.0.1, 10.0.0.1")
	if got := ClientIP(req); got != "39.32.0.1" {
		t.Fatalf("ClientIP() with XFF = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "garbage")
	if got := ClientIP(req); got != "10.0.0.7" {
		t.Fatalf("ClientIP() with bad XFF = %q", got)
	}
}
