package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/admin"
	"github.com/ThanimaVITC/thanima-connect/internal/application/repository"
	"github.com/ThanimaVITC/thanima-connect/internal/config"
	"github.com/ThanimaVITC/thanima-connect/internal/sessions"
	"github.com/ThanimaVITC/thanima-connect/internal/tokens"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/ThanimaVITC/thanima-connect/pkg/metrics"
	"github.com/ThanimaVITC/thanima-connect/pkg/middleware"
	"github.com/gin-gonic/gin"
)

const (
	LoginPath     = "/admin/login"
	dashboardPath = "/admin"
)

// AdminHandler serves the admin login surface and the dashboard API.
type AdminHandler struct {
	svc     *admin.Service
	cfg     config.AdminConfig
	secret  []byte
	timeout time.Duration
}

func NewAdminHandler(svc *admin.Service, cfg config.AdminConfig, secret []byte, timeout time.Duration) *AdminHandler {
	return &AdminHandler{svc: svc, cfg: cfg, secret: secret, timeout: timeout}
}

// Register routes: login/logout are public, everything else is gated by
// the admin session cookie.
func (h *AdminHandler) Register(r *gin.Engine) {
	r.GET(LoginPath, h.LoginPage)
	r.POST(LoginPath, h.Login)
	r.POST("/admin/logout", h.Logout)

	gate := middleware.AdminSession(h.secret, h.cfg.CookieName, LoginPath)
	r.GET(dashboardPath, gate, h.Dashboard)

	api := r.Group("/api/admin", gate)
	api.GET("/submissions", h.List)
	api.GET("/export/csv", h.ExportCSV)
	api.GET("/export/files", h.ExportFiles)
	api.DELETE("/submissions/:id", h.Delete)
}

// LoginPage describes the login form; ?error= carries the last failure.
func (h *AdminHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"action": LoginPath,
		"method": http.MethodPost,
		"fields": []string{"password"},
		"error":  c.Query("error"),
	})
}

// Login checks the shared admin password and sets the session cookie.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `form:"password" json:"password"`
	}
	_ = c.ShouldBind(&req)

	if h.cfg.Password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) != 1 {
		metrics.AdminLogins.WithLabelValues("failure").Inc()
		logger.InfoCtx(c.Request.Context(), "admin login failed from %s", c.ClientIP())
		c.Redirect(http.StatusSeeOther, LoginPath+"?error="+url.PathEscape("Invalid password"))
		return
	}

	tok, claims, err := tokens.IssueAdminToken(h.secret, h.cfg.SessionTTL)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "issue admin token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not start session."})
		return
	}
	metrics.AdminLogins.WithLabelValues("success").Inc()
	logger.InfoCtx(c.Request.Context(), "admin session %s started", claims.ID)
	h.setCookie(c, tok, int(h.cfg.SessionTTL.Seconds()))
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

// Logout revokes the current token, if any, and clears the cookie.
func (h *AdminHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(h.cfg.CookieName); err == nil && raw != "" {
		if claims, err := tokens.ParseAdminToken(h.secret, raw); err == nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := sessions.RevokeToken(c.Request.Context(), claims.ID, ttl); err != nil {
				logger.WarnCtx(c.Request.Context(), "revoke admin session %s: %v", claims.ID, err)
			}
		}
	}
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, LoginPath)
}

func (h *AdminHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, value, maxAge, "/", "", h.cfg.CookieSecure, true)
}

// Dashboard lists the admin API for the signed-in client.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"submissions": "/api/admin/submissions",
		"csv":         "/api/admin/export/csv",
		"files":       "/api/admin/export/files",
		"logout":      "/admin/logout",
	})
}

func (h *AdminHandler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *AdminHandler) List(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	subs, err := h.svc.List(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, "list submissions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions."})
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *AdminHandler) ExportCSV(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	content, err := h.svc.ExportCSV(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, "export csv: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"content": "", "error": "Failed to export data."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (h *AdminHandler) ExportFiles(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	zipped, err := h.svc.BundleAttachments(ctx)
	switch {
	case errors.Is(err, admin.ErrNothingToExport):
		c.JSON(http.StatusOK, gin.H{"content": "", "error": "No files to download."})
	case err != nil:
		logger.ErrorCtx(ctx, "export files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"content": "", "error": "Failed to create zip file."})
	default:
		c.JSON(http.StatusOK, gin.H{"content": base64.StdEncoding.EncodeToString(zipped)})
	}
}

func (h *AdminHandler) Delete(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	err := h.svc.Delete(ctx, c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Submission not found."})
	case err != nil:
		logger.ErrorCtx(ctx, "delete submission: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not delete submission."})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
