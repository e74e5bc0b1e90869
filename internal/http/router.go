package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/motorline/marketplace/internal/auth"
	"github.com/motorline/marketplace/internal/config"
	"github.com/motorline/marketplace/internal/http/handlers"
	"github.com/motorline/marketplace/internal/http/middlewares"
	"github.com/motorline/marketplace/internal/observability"
	"github.com/motorline/marketplace/internal/repo/postgres"
)

// UserDirectory is everything the user handlers and the auth middleware
// need from the user store.
type UserDirectory interface {
	handlers.UserStore
	middlewares.UserResolver
}

type CategoryDirectory interface {
	handlers.CategoryStore
	handlers.CategoryFinder
}

// Stores groups the persistence interfaces the router wires into handlers.
// Production uses the postgres repos; tests plug in the memory catalog.
type Stores struct {
	Users      UserDirectory
	Categories CategoryDirectory
	Products   handlers.ProductStore
	Tags       handlers.TagStore
}

func NewPostgresStores(pool *pgxpool.Pool, metrics *observability.Prom) Stores {
	return Stores{
		Users:      postgres.NewUsersRepo(pool, metrics),
		Categories: postgres.NewCategoriesRepo(pool, metrics),
		Products:   postgres.NewProductsRepo(pool, metrics),
		Tags:       postgres.NewTagsRepo(pool, metrics),
	}
}

type RouterDeps struct {
	Log      *slog.Logger
	Cfg      config.Config
	Stores   Stores
	Metrics  *observability.Prom
	Registry *prometheus.Registry

	// Limiter may be nil; login/signup then use a per-process window.
	Limiter middlewares.CounterStore

	// Readiness probes, checked by GET /readyz.
	Pings []func(context.Context) error
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Cfg

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("marketplace-api"))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinHandleMiddleware())
	}

	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// health + metrics

	h := handlers.NewHealthHandler(deps.Pings...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// wire up handlers

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager, deps.Stores.Users)
	loginLimiter := middlewares.NewRateLimiter(deps.Limiter, cfg.LoginRateLimit, cfg.LoginRateWindow)

	categoriesHandler := handlers.NewCategoriesHandler(deps.Stores.Categories)
	productsHandler := handlers.NewProductsHandler(deps.Stores.Products, deps.Stores.Categories, deps.Stores.Tags)
	usersHandler := handlers.NewUsersHandler(deps.Stores.Users, jwtManager, cfg.BcryptCost)

	// any verb on the root answers plain "Success"
	r.Any("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Success")
	})

	categories := r.Group("/categories", middlewares.RequireJSON())
	{
		categories.GET("", categoriesHandler.ListCategories)
		categories.POST("/addone", categoriesHandler.CreateCategory)
		categories.PATCH("/:id", categoriesHandler.RenameCategory)
	}

	products := r.Group("/products", middlewares.RequireJSON())
	{
		products.GET("", productsHandler.ListProducts)
		products.GET("/tags", productsHandler.ListTags)
		products.POST("/addone", productsHandler.CreateProduct)
		products.POST("/addtag", productsHandler.CreateTag)
		products.PUT("/:id", productsHandler.UpdateProduct)
	}

	users := r.Group("/users", middlewares.RequireJSON())
	{
		users.POST("/create", loginLimiter.Middleware(middlewares.KeyByIP), usersHandler.SignUp)
		users.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), usersHandler.Login)
		users.GET("/me", authMW.RequireAuth(), usersHandler.Me)
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "Could not find this route."})
	})

	return r
}
