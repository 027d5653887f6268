package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/domain/project"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/gin-gonic/gin"
)

type PagesHandler struct {
	sessions    *auth.Manager
	profiles    ProfileService
	projects    store.Projects
	enrollments store.Enrollments
	log         *slog.Logger
}

func NewPagesHandler(sessions *auth.Manager, profiles ProfileService, projects store.Projects, enrollments store.Enrollments, log *slog.Logger) *PagesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PagesHandler{
		sessions:    sessions,
		profiles:    profiles,
		projects:    projects,
		enrollments: enrollments,
		log:         log,
	}
}

// Index sends each visitor to the page for their session state.
func (h *PagesHandler) Index(ctx *gin.Context) {
	s := h.sessions.Load(ctx)

	switch {
	case s.Authenticated() && s.IsAdmin:
		ctx.Redirect(http.StatusFound, "/admin-dashboard")
	case s.Authenticated():
		ctx.Redirect(http.StatusFound, "/home")
	default:
		ctx.Redirect(http.StatusFound, "/login")
	}
}

func (h *PagesHandler) About(ctx *gin.Context) {
	renderPage(ctx, h.sessions, "about", gin.H{
		"title":       "AI Career Counselor",
		"description": "Set a career goal, see which skills you already have and which are missing, and get a four-phase roadmap.",
	})
}

func (h *PagesHandler) Home(ctx *gin.Context) {
	username := h.sessions.Load(ctx).Username

	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	profile := h.profiles.Get(cctx, username)

	myProjects := []project.Project{}
	ids, err := h.enrollments.ProjectIDs(cctx, username)
	if err != nil {
		h.log.WarnContext(ctx.Request.Context(), "enrollments lookup failed", "username", username, "err", err)
	}
	if len(ids) > 0 {
		all, err := h.projects.List(cctx)
		if err != nil {
			h.log.WarnContext(ctx.Request.Context(), "projects list failed", "err", err)
		}
		myProjects = enrolledProjects(all, ids)
	}

	renderPage(ctx, h.sessions, "home", gin.H{
		"user":        profile,
		"my_projects": myProjects,
	})
}

func enrolledProjects(all []project.Project, ids []int) []project.Project {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	out := []project.Project{}
	for _, p := range all {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
