package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"github.com/hotelagreement/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteRegistrar defines the interface for registering versioned routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RootRegistrar registers routes outside the versioned API group
type RootRegistrar interface {
	RegisterRootRoutes(r gin.IRoutes)
}

// Router manages HTTP route registration
type Router struct {
	engine         *gin.Engine
	apiVersion     string
	registrars     []RouteRegistrar
	rootRegistrars []RootRegistrar
	staticDir      string
	swagger        *middleware.SwaggerConfig
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithStaticDir serves files from dir for GET requests no route matches,
// with index.html at "/"
func WithStaticDir(dir string) RouterOption {
	return func(r *Router) {
		r.staticDir = dir
	}
}

// WithSwagger mounts the API docs at /swagger behind cfg
func WithSwagger(cfg middleware.SwaggerConfig) RouterOption {
	return func(r *Router) {
		r.swagger = &cfg
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterRoot adds a RootRegistrar to be registered later
func (r *Router) RegisterRoot(registrar RootRegistrar) *Router {
	r.rootRegistrars = append(r.rootRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	for _, registrar := range r.rootRegistrars {
		registrar.RegisterRootRoutes(r.engine)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	if r.swagger != nil {
		r.engine.GET("/swagger/*any",
			middleware.SwaggerProtection(*r.swagger),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.engine.NoRoute(r.noRoute)
}

// noRoute serves static files when configured and answers everything else
// with a JSON 404
func (r *Router) noRoute(c *gin.Context) {
	method := c.Request.Method
	if r.staticDir != "" && (method == http.MethodGet || method == http.MethodHead) {
		fs := http.Dir(r.staticDir)
		name := path.Clean("/" + c.Request.URL.Path)
		if f, err := fs.Open(name); err == nil {
			_ = f.Close()
			c.FileFromFS(name, fs)
			return
		}
	}

	c.JSON(http.StatusNotFound, dto.NewErrorResponse(
		dto.ErrCodeNotFound,
		"Route not found: "+c.Request.URL.Path,
		middleware.GetRequestID(c),
	))
}
