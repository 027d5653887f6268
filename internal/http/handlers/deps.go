package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// storeTimeout bounds a single store round-trip inside a request.
const storeTimeout = 3 * time.Second

type AccountService interface {
	Create(ctx context.Context, username, password string, role user.Role) (user.Account, error)
	Login(ctx context.Context, username, password string, role user.Role) (user.Account, error)
	List(ctx context.Context) ([]user.User, error)
}

type ProfileService interface {
	Get(ctx context.Context, username string) user.Profile
	Update(ctx context.Context, username string, fields user.ProfileFields) error
	SetRoadmap(ctx context.Context, username, text string) error
}

type Notifier interface {
	Notify(ctx context.Context, username, action string)
}

func withStoreTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), storeTimeout)
}

// renderPage answers a GET page with its view model. Pending flashes are
// consumed here, the way a template render would.
func renderPage(ctx *gin.Context, sessions *auth.Manager, page string, data gin.H) {
	s := sessions.Load(ctx)

	body := gin.H{
		"page":    page,
		"flashes": sessions.PopFlashes(ctx),
	}
	if s.Authenticated() {
		body["username"] = s.Username
		body["is_admin"] = s.IsAdmin
	}
	for k, v := range data {
		body[k] = v
	}

	ctx.JSON(http.StatusOK, body)
}

func flashAndRedirect(ctx *gin.Context, sessions *auth.Manager, category, message, location string) {
	_ = sessions.AddFlash(ctx, category, message)
	ctx.Redirect(http.StatusFound, location)
}
