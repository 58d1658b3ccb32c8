package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/rewriter"
	"github.com/ibreez3/email-rewriter/service"
)

type page struct {
	Catalog   service.Catalog
	HasEnvKey bool
	Email     string
	Tone      string
	Model     string
	ShowDiff  bool
	Warning   string
	Error     string
	Result    *service.Output
}

type rewriteForm struct {
	Email    string `form:"email"`
	Tone     string `form:"tone"`
	Model    string `form:"model"`
	APIKey   string `form:"api_key"`
	ShowDiff bool   `form:"show_diff"`
}

type RewriteReq struct {
	Email       string   `json:"email"`
	Tone        string   `json:"tone"`
	Model       string   `json:"model"`
	APIKey      string   `json:"api_key"`
	ShowDiff    bool     `json:"show_diff"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=1"`
	MaxTokens   int      `json:"max_tokens" binding:"omitempty,gt=0"`
}

type ValidateReq struct {
	APIKey string `json:"api_key"`
}

func (h *handlers) newPage() page {
	p := page{
		Catalog:   h.svc.Catalog(),
		HasEnvKey: h.svc.Config().OpenAI.APIKey != "",
		Tone:      string(rewriter.ToneProfessional),
	}
	if len(p.Catalog.Models) > 0 {
		p.Model = p.Catalog.Models[0].ID
	}
	return p
}

func (h *handlers) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.newPage())
}

func (h *handlers) submit(c *gin.Context) {
	var form rewriteForm
	p := h.newPage()
	if err := c.ShouldBind(&form); err != nil {
		p.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}
	p.Email, p.ShowDiff = form.Email, form.ShowDiff
	if form.Tone != "" {
		p.Tone = form.Tone
	}
	if form.Model != "" {
		p.Model = form.Model
	}

	out := h.svc.Rewrite(c.Request.Context(), service.Input{
		Email:    form.Email,
		Tone:     form.Tone,
		Model:    form.Model,
		APIKey:   form.APIKey,
		ShowDiff: form.ShowDiff,
	})
	switch out.Status {
	case service.StatusSuccess:
		p.Result = &out
	case service.StatusInvalid:
		if out.Error == service.MsgEmptyEmail {
			p.Warning = out.Error
		} else {
			p.Error = out.Error
		}
	default:
		p.Error = out.Error
	}
	c.HTML(statusCode(out.Status), "index.html", p)
}

func (h *handlers) models(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Catalog())
}

func (h *handlers) validate(c *gin.Context) {
	var req ValidateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := h.svc.Validate(c.Request.Context(), apiKeyFrom(c, req.APIKey))
	code := http.StatusOK
	if !v.Valid {
		code = http.StatusUnauthorized
	}
	c.JSON(code, v)
}

func (h *handlers) rewrite(c *gin.Context) {
	var req RewriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": service.StatusInvalid, "error": err.Error()})
		return
	}
	out := h.svc.Rewrite(c.Request.Context(), service.Input{
		Email:       req.Email,
		Tone:        req.Tone,
		Model:       req.Model,
		APIKey:      apiKeyFrom(c, req.APIKey),
		ShowDiff:    req.ShowDiff,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if out.Status == service.StatusError {
		h.log.Warn("rewrite request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("error", out.Error))
	}
	c.JSON(statusCode(out.Status), out)
}

func apiKeyFrom(c *gin.Context, body string) string {
	if body != "" {
		return body
	}
	return c.GetHeader("X-API-Key")
}

func statusCode(s service.Status) int {
	switch s {
	case service.StatusSuccess:
		return http.StatusOK
	case service.StatusInvalid:
		return http.StatusBadRequest
	case service.StatusRejected:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
