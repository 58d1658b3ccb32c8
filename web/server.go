// Package web serves the rewrite form and its JSON API.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type handlers struct {
	svc *service.Service
	log *zap.Logger
}

// NewRouter wires the form page, the /api endpoints and, when metrics is
// non-nil, /metrics.
func NewRouter(svc *service.Service, metrics http.Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestID(), accessLog(log), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	h := &handlers{svc: svc, log: log}
	r.GET("/", h.index)
	r.POST("/", h.submit)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/models", h.models)
	api.POST("/validate", h.validate)
	api.POST("/rewrite", h.rewrite)

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	return r
}
