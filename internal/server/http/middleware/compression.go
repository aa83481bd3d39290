package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxDecompressedBody bounds the size of an inflated request body.
const maxDecompressedBody = 8 << 20

// DecompressRequest inflates gzip encoded request bodies.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(strings.ToLower(c.GetHeader("Content-Encoding")), "gzip") {
			c.Next()
			return
		}

		body := c.Request.Body
		reader, err := gzip.NewReader(body)
		if err != nil {
			abort(c, http.StatusBadRequest, "malformed gzip body")
			return
		}
		defer reader.Close()
		defer body.Close()

		c.Request.Body = io.NopCloser(io.LimitReader(reader, maxDecompressedBody))
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
