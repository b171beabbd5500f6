package httpapi

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"cafe-receipt-bridge/internal/config"
	"cafe-receipt-bridge/internal/logging"
)

const (
	corsAllowMethods = "GET,POST,OPTIONS"
	corsAllowHeaders = "content-type,authorization,x-api-key"
	corsMaxAge       = "600"
)

// corsPolicy is rebuilt whenever the config changes; the POS web app may be
// served from a fixed origin or from preview deployments matched by pattern.
type corsPolicy struct {
	origins  map[string]struct{}
	patterns []originPattern
}

type originPattern struct {
	raw string
	re  *regexp.Regexp
}

func newCORSPolicy(cfg *config.Config, log *logging.Logger) *corsPolicy {
	log = log.Tagged("cors")
	p := &corsPolicy{
		origins:  parseOrigins(cfg.CORS.AllowOrigins),
		patterns: parsePatterns(cfg.CORS.AllowOriginPatterns, log),
	}

	listed := make([]string, 0, len(p.origins))
	for origin := range p.origins {
		listed = append(listed, origin)
	}
	sort.Strings(listed)
	log.Info("allow origins: %v", listed)
	for _, pattern := range p.patterns {
		log.Info("allow origin pattern: %q", pattern.raw)
	}
	return p
}

func parseOrigins(value string) map[string]struct{} {
	result := make(map[string]struct{})
	for _, item := range strings.Split(value, ",") {
		if origin := normalizeOrigin(item); origin != "" {
			result[origin] = struct{}{}
		}
	}
	return result
}

// parsePatterns accepts shell-style wildcards or plain regular expressions.
// Patterns that do not compile are logged and skipped.
func parsePatterns(value string, log *logging.Logger) []originPattern {
	var patterns []originPattern
	for _, item := range strings.Split(value, ",") {
		raw := strings.TrimSpace(item)
		if raw == "" {
			continue
		}
		re, err := regexp.Compile(wildcardToRegexp(raw))
		if err != nil {
			log.Failure(err, "origin pattern %q ignored", raw)
			continue
		}
		patterns = append(patterns, originPattern{raw: raw, re: re})
	}
	return patterns
}

func wildcardToRegexp(pattern string) string {
	if !strings.Contains(pattern, "*") {
		return pattern
	}
	return "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.TrimSpace(origin), "/")
}

// allows reports whether origin may read responses, and why not.
func (p *corsPolicy) allows(origin string) (bool, string) {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false, "missing origin"
	}
	if _, ok := p.origins[origin]; ok {
		return true, "explicit allowlist"
	}
	for _, pattern := range p.patterns {
		if pattern.re.MatchString(origin) {
			return true, "pattern match"
		}
	}
	return false, "not allowed"
}

// corsMiddleware answers preflights before routing and authentication, so
// browsers never need the api key for OPTIONS. policy is read per request.
func corsMiddleware(log *logging.Logger, policy func() *corsPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed, reason := policy().allows(origin)
			if origin != "" && !allowed {
				log.Debug("cors reject origin %q: %s", origin, reason)
			}

			// the till app calls a loopback address from a public page
			w.Header().Set("Access-Control-Allow-Private-Network", "true")
			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
