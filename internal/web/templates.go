package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func mustTemplates() *template.Template {
	funcs := template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
		"date":  func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
		"shortID": func(id string) string {
			if len(id) <= 8 {
				return id
			}
			return id[len(id)-8:]
		},
		"statusClass":      func(st model.OrderStatus) string { return "status-" + string(st) },
		"placeholderImage": func() string { return api.PlaceholderImage },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}

// render merges the per-request base data (session, cart count, flash) into
// the page data and writes the named template.
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := Session(c)
	data["Session"] = sess
	data["User"] = sess.User()
	if crt := Cart(c); crt != nil {
		data["CartCount"] = crt.ItemCount()
	} else {
		data["CartCount"] = 0
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.takeFlash(c)
	}
	c.HTML(status, name, data)
}

func (s *Server) renderLoading(c *gin.Context) {
	s.render(c, http.StatusOK, "loading", gin.H{"Title": "Loading"})
}

func (s *Server) renderNotFound(c *gin.Context, what string) {
	s.render(c, http.StatusNotFound, "not_found", gin.H{"Title": "Not Found", "What": what})
}
