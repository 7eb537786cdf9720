package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/petitmarche/backend/docs"
	"github.com/petitmarche/backend/internal/auth"
	"github.com/petitmarche/backend/internal/config"
	"github.com/petitmarche/backend/internal/httpx"
	"github.com/petitmarche/backend/internal/logging"
	"github.com/petitmarche/backend/internal/metrics"
	"github.com/petitmarche/backend/internal/order"
	"github.com/petitmarche/backend/internal/product"
	"github.com/petitmarche/backend/internal/user"
)

// @title petitmarche shop API
// @version 1.0
// @description Catalog, accounts and the order transaction engine.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log, err := logging.New("shop-api", cfg.Development)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()

	gateway := auth.NewGateway(cfg.JWTSecret, cfg.JWTTTL, auth.NewRedisRevocationList(rdb))
	m := metrics.New("shop_api")

	users := user.NewService(user.NewPGRepo(pool), log)
	products := product.NewPGRepo(pool)
	orders := order.NewService(order.NewPGStore(pool), log, m)

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log), httpx.Measure(m))

	r.GET("/health", healthHandler())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth/register", registerHandler(users, log))
	r.POST("/auth/login", loginHandler(users, gateway, log))

	r.GET("/products", listProductsHandler(products, log))
	r.GET("/products/:id", getProductHandler(products, log))

	authd := r.Group("/", httpx.RequireAuth(gateway))
	{
		authd.POST("/auth/logout", logoutHandler(gateway, log))
		authd.GET("/me", meHandler(users, log))
		authd.PUT("/me", updateMeHandler(users, log))
		authd.DELETE("/me", deleteMeHandler(users, log))

		authd.POST("/orders", createOrderHandler(orders, log))
		authd.GET("/orders/me", listMyOrdersHandler(orders, log))
		authd.GET("/orders/:id", getOrderHandler(orders, log))
		authd.PATCH("/orders/:id/cancel", cancelOrderHandler(orders, log))
	}

	admin := r.Group("/admin", httpx.RequireAuth(gateway), httpx.RequireAdmin())
	{
		admin.POST("/products", createProductHandler(products, log))
		admin.PUT("/products/:id", updateProductHandler(products, log))
		admin.DELETE("/products/:id", deleteProductHandler(products, log))
		admin.GET("/orders", adminListOrdersHandler(orders, log))
		admin.PATCH("/orders/:id/status", updateOrderStatusHandler(orders, log))
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		log.Info("shop-api listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
