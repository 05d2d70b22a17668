package handler

import (
	"github.com/inkwell/internal/draft"
	"github.com/inkwell/internal/service"
	"github.com/rs/zerolog"
)

// Deps 汇总 HTTP 处理器依赖的服务。
type Deps struct {
	Manager    *draft.Manager
	Posts      *service.PostService
	Tags       *service.TagService
	Categories *service.CategoryService
	Users      *service.UserService
	Logger     zerolog.Logger
	// JWTSecret enables bearer-token authentication when non-empty.
	JWTSecret string
	// SecureCookies marks the language cookie Secure.
	SecureCookies bool
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	manager       *draft.Manager
	posts         *service.PostService
	tags          *service.TagService
	categories    *service.CategoryService
	users         *service.UserService
	log           zerolog.Logger
	jwtSecret     []byte
	secureCookies bool
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Deps) *API {
	a := &API{
		manager:       deps.Manager,
		posts:         deps.Posts,
		tags:          deps.Tags,
		categories:    deps.Categories,
		users:         deps.Users,
		log:           deps.Logger.With().Str("component", "http").Logger(),
		secureCookies: deps.SecureCookies,
	}
	if deps.JWTSecret != "" {
		a.jwtSecret = []byte(deps.JWTSecret)
	}
	return a
}

// Manager exposes the edit-session manager, e.g. for shutdown.
func (a *API) Manager() *draft.Manager {
	return a.manager
}
