package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/domain/project"
	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	sessions *auth.Manager
	accounts AccountService
	projects store.Projects
	log      *slog.Logger
}

func NewAdminHandler(sessions *auth.Manager, accounts AccountService, projects store.Projects, log *slog.Logger) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{sessions: sessions, accounts: accounts, projects: projects, log: log}
}

func (h *AdminHandler) Dashboard(ctx *gin.Context) {
	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	users, err := h.accounts.List(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "users scan failed", "err", err)
		RespondInternal(ctx, "Could not load users")
		return
	}
	if users == nil {
		users = []user.User{}
	}

	projects, err := h.projects.List(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "projects list failed", "err", err)
		RespondInternal(ctx, "Could not load projects")
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}

	renderPage(ctx, h.sessions, "admin_dashboard", gin.H{
		"all_users":  users,
		"user_count": len(users),
		"projects":   projects,
	})
}

func (h *AdminHandler) CreateProjectPage(ctx *gin.Context) {
	renderPage(ctx, h.sessions, "admin_create_project", nil)
}

// CreateProject records the listing and the sanitized upload name. The
// image bytes are not kept.
func (h *AdminHandler) CreateProject(ctx *gin.Context) {
	var req project.CreateProjectRequest
	if msg, ok := BindForm(ctx, &req); !ok {
		flashAndRedirect(ctx, h.sessions, "danger", msg, "/admin/create-project")
		return
	}

	if fh, err := ctx.FormFile("image"); err == nil {
		if name := secureFilename(fh.Filename); name != "" {
			req.Image = &name
		}
	}

	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	p, err := h.projects.Create(cctx, req)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "project create failed", "err", err)
		flashAndRedirect(ctx, h.sessions, "danger", "Could not create project.", "/admin/create-project")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "project created", "project_id", p.ID)
	ctx.Redirect(http.StatusFound, "/admin/dashboard")
}

// secureFilename keeps only the base name and ASCII letters, digits, '.',
// '-' and '_'. Leading dots are dropped so the result is never hidden or a
// path segment.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	return strings.TrimLeft(b.String(), "._")
}
