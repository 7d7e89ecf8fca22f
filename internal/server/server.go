package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opencampus/paygate/internal/catalog"
	catalogdomain "github.com/opencampus/paygate/internal/catalog/domain"
	"github.com/opencampus/paygate/internal/condition"
	"github.com/opencampus/paygate/internal/config"
	"github.com/opencampus/paygate/internal/confirm"
	"github.com/opencampus/paygate/internal/coupon"
	"github.com/opencampus/paygate/internal/entitlement"
	"github.com/opencampus/paygate/internal/metrics"
	"github.com/opencampus/paygate/internal/pricing"
	"github.com/opencampus/paygate/internal/settlement"
	settlementdomain "github.com/opencampus/paygate/internal/settlement/domain"
	"github.com/opencampus/paygate/internal/wallet"
	walletdomain "github.com/opencampus/paygate/internal/wallet/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	metrics.Module,
	catalog.Module,
	wallet.Module,
	coupon.Module,
	entitlement.Module,
	pricing.Module,
	condition.Module,
	settlement.Module,
	confirm.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	catalogSvc    catalogdomain.Service
	walletSvc     walletdomain.Service
	settlementSvc settlementdomain.Service
	describer     *condition.Describer
	confirmStore  confirm.Store
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	CatalogSvc    catalogdomain.Service
	WalletSvc     walletdomain.Service
	SettlementSvc settlementdomain.Service
	Describer     *condition.Describer
	ConfirmStore  confirm.Store
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		catalogSvc:    p.CatalogSvc,
		walletSvc:     p.WalletSvc,
		settlementSvc: p.SettlementSvc,
		describer:     p.Describer,
		confirmStore:  p.ConfirmStore,
	}
}

func registerRoutes(s *Server) {
	v1 := s.engine.Group("/v1", s.authRequired())
	v1.GET("/access", s.GetAccess)
	v1.POST("/pay", s.Pay)
	v1.POST("/pay/confirmations", s.IssueConfirmation)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
