package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sora2-studio/backend/pkg/response"
)

const indexFile = "index.html"

// Static serves index.html at "/" and any other file under dir by path.
// Hidden files (any segment starting with ".") are never served.
func Static(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			response.NotFound(c, "Not found")
			return
		}
		rel := path.Clean("/" + c.Request.URL.Path)
		if rel == "/" {
			rel = "/" + indexFile
		}
		if hidden(rel) {
			response.NotFound(c, "Not found")
			return
		}
		full := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			response.NotFound(c, "Not found")
			return
		}
		c.File(full)
	}
}

func hidden(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
