package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type GoalsHandler struct {
	sessions *auth.Manager
	profiles ProfileService
	notifier Notifier
	log      *slog.Logger
}

func NewGoalsHandler(sessions *auth.Manager, profiles ProfileService, notifier Notifier, log *slog.Logger) *GoalsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GoalsHandler{sessions: sessions, profiles: profiles, notifier: notifier, log: log}
}

func (h *GoalsHandler) SetupGoalPage(ctx *gin.Context) {
	username := h.sessions.Load(ctx).Username

	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	renderPage(ctx, h.sessions, "setup_goal", gin.H{
		"user": h.profiles.Get(cctx, username),
	})
}

// SetupGoal overwrites the five profile fields and moves on to the
// dashboard.
func (h *GoalsHandler) SetupGoal(ctx *gin.Context) {
	username := h.sessions.Load(ctx).Username

	var fields user.ProfileFields
	if msg, ok := BindForm(ctx, &fields); !ok {
		flashAndRedirect(ctx, h.sessions, "danger", msg, "/setup-goal")
		return
	}

	cctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := h.profiles.Update(cctx, username, fields); err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "goal update failed", "username", username, "err", err)
		flashAndRedirect(ctx, h.sessions, "danger", "Could not save your goal. Please try again.", "/setup-goal")
		return
	}

	h.notifier.Notify(ctx.Request.Context(), username, "Updated target to "+fields.TargetGoal)

	ctx.Redirect(http.StatusFound, "/dashboard")
}
