package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/pkg/middleware/requestid"
)

const responseMetaKey = "response_meta"

// WithResponseMeta gives each request a metadata map that handlers fill (cache_hit)
// and the response envelope echoes. request_id and processing_time_ms are always present.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Next()
		if _, ok := meta["processing_time_ms"]; !ok {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether a dashboard payload came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaOf(c)["cache_hit"] = hit
}

// ExtractMeta returns the request's metadata map or nil outside WithResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, _ := raw.(map[string]interface{})
	return meta
}

func metaOf(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]interface{}{}
	c.Set(responseMetaKey, meta)
	return meta
}
