package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	allowedMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", ")
	allowedHeaders = "Authorization, Content-Type, X-Request-ID"
	exposedHeaders = "Content-Disposition, X-Request-ID"
	preflightTTL   = 10 * time.Minute
)

// New returns a CORS middleware for the browser front-end.
//
// An empty allow list admits any origin without credentials. Entries may be exact
// origins ("https://app.innouni.dev") or subdomain wildcards ("https://*.innouni.dev").
// Credentials are only advertised for origins matched by the list.
func New(allowedOrigins []string) gin.HandlerFunc {
	matcher := newMatcher(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		switch {
		case origin == "":
		case matcher.open():
			h.Set("Access-Control-Allow-Origin", "*")
		case matcher.match(origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		default:
			if isPreflight(c.Request) {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}
		h.Set("Access-Control-Expose-Headers", exposedHeaders)

		if isPreflight(c.Request) {
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)
			h.Set("Access-Control-Max-Age", strconv.Itoa(int(preflightTTL.Seconds())))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

type matcher struct {
	exact     map[string]struct{}
	wildcards []wildcard
}

type wildcard struct {
	scheme string
	suffix string
}

func newMatcher(origins []string) matcher {
	m := matcher{exact: map[string]struct{}{}}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			m.wildcards = append(m.wildcards, wildcard{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		m.exact[origin] = struct{}{}
	}
	return m
}

func (m matcher) open() bool {
	return len(m.exact) == 0 && len(m.wildcards) == 0
}

func (m matcher) match(origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, w := range m.wildcards {
		rest, ok := strings.CutPrefix(origin, w.scheme)
		if ok && strings.HasSuffix(rest, w.suffix) && len(rest) > len(w.suffix) {
			return true
		}
	}
	return false
}
