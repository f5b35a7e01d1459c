package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config lists what cross-origin callers may do.
type Config struct {
	AllowedOrigins []string // "*" allows any origin
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         time.Duration
}

// DefaultConfig allows the JSON API methods from the given origins.
func DefaultConfig(origins []string) Config {
	return Config{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         10 * time.Minute,
	}
}

type cors struct {
	cfg     Config
	any     bool
	methods string
	headers string
	exposed string
	maxAge  string
}

// New returns middleware answering pre-flight requests with 204 and adding
// CORS headers for allowed origins. Disallowed pre-flights get 403.
func New(cfg Config) func(http.Handler) http.Handler {
	c := &cors{
		cfg:     cfg,
		any:     slices.Contains(cfg.AllowedOrigins, "*"),
		methods: strings.Join(cfg.AllowedMethods, ", "),
		headers: strings.Join(cfg.AllowedHeaders, ", "),
		exposed: strings.Join(cfg.ExposedHeaders, ", "),
		maxAge:  strconv.Itoa(int(cfg.MaxAge / time.Second)),
	}
	return c.handler
}

func (c *cors) allowed(origin string) bool {
	if c.any {
		return true
	}
	for _, o := range c.cfg.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func (c *cors) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		if !c.allowed(origin) {
			if preflight {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if c.any {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}

		if preflight {
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", c.methods)
			h.Set("Access-Control-Allow-Headers", c.headers)
			if c.cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", c.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if c.exposed != "" {
			h.Set("Access-Control-Expose-Headers", c.exposed)
		}
		next.ServeHTTP(w, r)
	})
}
