package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/careercounsel/internal/ai"
	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/cache"
	"github.com/gin-gonic/gin"
)

// CounselorHandler serves the AI-backed routes. Model calls are bounded
// only by the request context.
type CounselorHandler struct {
	sessions *auth.Manager
	profiles ProfileService
	gateway  ai.Gateway
	gaps     *cache.Cache[ai.Gap]
	log      *slog.Logger
}

func NewCounselorHandler(sessions *auth.Manager, profiles ProfileService, gateway ai.Gateway, log *slog.Logger) *CounselorHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CounselorHandler{sessions: sessions, profiles: profiles, gateway: gateway, log: log}
}

// WithGapCache remembers successful gap analyses per goal and skill set.
// Fallback gaps are never cached.
func (h *CounselorHandler) WithGapCache(c *cache.Cache[ai.Gap]) *CounselorHandler {
	h.gaps = c
	return h
}

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
	Goal    string `json:"goal" binding:"max=200"`
}

func (h *CounselorHandler) Dashboard(ctx *gin.Context) {
	username := h.sessions.Load(ctx).Username

	cctx, cancel := withStoreTimeout(ctx)
	profile := h.profiles.Get(cctx, username)
	cancel()

	gap := h.analyzeGap(ctx, username, profile.TargetGoal, profile.Skills)

	renderPage(ctx, h.sessions, "dashboard", gin.H{
		"user":            profile,
		"matching_skills": gap.Matched,
		"missing_skills":  gap.Missing,
	})
}

func (h *CounselorHandler) analyzeGap(ctx *gin.Context, username, target, skills string) ai.Gap {
	key := target + "\x00" + skills
	if h.gaps != nil {
		if gap, ok := h.gaps.Get(key); ok {
			return gap
		}
	}

	gap, err := ai.AnalyzeGap(ctx.Request.Context(), h.gateway, target, skills)
	if err != nil {
		h.log.WarnContext(ctx.Request.Context(), "gap analysis degraded", "username", username, "err", err)
		return gap
	}
	if h.gaps != nil {
		h.gaps.Set(key, gap)
	}
	return gap
}

// GenerateRoadmap is the one AI route that surfaces failure as a 500.
func (h *CounselorHandler) GenerateRoadmap(ctx *gin.Context) {
	username := h.sessions.Load(ctx).Username

	cctx, cancel := withStoreTimeout(ctx)
	profile := h.profiles.Get(cctx, username)
	cancel()

	prompt := ai.RoadmapPrompt(profile.College, profile.TargetGoal, profile.Skills)

	roadmap, err := h.gateway.Ask(ctx.Request.Context(), prompt, "")
	if err != nil {
		h.log.WarnContext(ctx.Request.Context(), "roadmap generation failed", "username", username, "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	cctx, cancel = withStoreTimeout(ctx)
	defer cancel()

	if err := h.profiles.SetRoadmap(cctx, username, roadmap); err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "roadmap save failed", "username", username, "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "roadmap": roadmap})
}

// Chat always answers 200; a failed model call comes back as the
// connection-error text.
func (h *CounselorHandler) Chat(ctx *gin.Context) {
	var req ChatRequest
	if !BindJSON(ctx, &req) {
		return
	}

	username := h.sessions.Load(ctx).Username

	cctx, cancel := withStoreTimeout(ctx)
	profile := h.profiles.Get(cctx, username)
	cancel()

	reply := ai.Reply(ctx.Request.Context(), h.gateway, req.Message, ai.ChatSystem(req.Goal, profile.College))

	ctx.JSON(http.StatusOK, gin.H{"response": reply})
}
