package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// canonicalQuery renames query keys that match one of keys ignoring case,
// so ?SortBy=Price binds like ?sortBy=Price. Values of duplicate spellings
// are merged.
func canonicalQuery(keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		changed := false
		for name, values := range q {
			for _, key := range keys {
				if name != key && strings.EqualFold(name, key) {
					q[key] = append(q[key], values...)
					delete(q, name)
					changed = true
					break
				}
			}
		}
		if changed {
			c.Request.URL.RawQuery = q.Encode()
		}
		c.Next()
	}
}
