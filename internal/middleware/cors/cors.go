package cors

import (
	"net/http"
	"strings"
)

// Config holds the allowed origins. A single "*" entry allows every origin
// but disables credentials, since browsers reject the combination.
type Config struct {
	AllowOrigins []string
}

// DefaultConfig allows the common local dev servers.
func DefaultConfig() Config {
	return Config{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// ParseOrigins splits a comma-separated origin list, falling back to the
// defaults when the result is empty.
func ParseOrigins(raw string) Config {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return DefaultConfig()
	}
	return Config{AllowOrigins: origins}
}

type Middleware struct {
	cfg      Config
	wildcard bool
}

func NewMiddleware(cfg Config) *Middleware {
	m := &Middleware{cfg: cfg}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			m.wildcard = true
		}
	}
	return m
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed := m.resolve(origin); allowed != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if !m.wildcard {
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) resolve(origin string) string {
	if origin == "" {
		return ""
	}
	if m.wildcard {
		return "*"
	}
	for _, o := range m.cfg.AllowOrigins {
		if o == origin {
			return origin
		}
	}
	return ""
}
