package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/cartstore"
	"storefront/internal/infra/db"
	"storefront/internal/infra/events"
	"storefront/internal/infra/export"
	"storefront/internal/infra/gateway"
	"storefront/internal/infra/genai"
	"storefront/internal/infra/realtime"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.env は無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited properly")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//カート: REDIS_URL があれば redis、無ければメモリ
	var carts repo.CartSnapshotRepository = cartstore.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := cartstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory carts", "error", err)
		} else {
			defer client.Close()
			carts = cartstore.NewRedisStore(client, cfg.CartTTL)
		}
	}

	//決済ゲートウェイ
	var pg usecase.PaymentGateway = gateway.DisabledGateway{}
	if cfg.GatewayEnabled() {
		rz, err := gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		if err != nil {
			return err
		}
		pg = rz
	} else {
		logger.Warn("payment gateway not configured")
	}

	//注文イベント: 管理画面ライブフィード + kafka
	hub := realtime.NewHub(strings.Split(cfg.FEURL, ",")...)
	defer hub.Close()
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				logger.Error("failed to close kafka writer", "error", err)
			}
		}()
	}
	var publisher usecase.EventPublisher = events.NewFanout(hub)
	if kafkaPub != nil {
		publisher = events.NewFanout(hub, kafkaPub)
	}

	//チャット
	var replies usecase.ReplyGenerator
	if cfg.GeminiAPIKey != "" {
		gem, err := genai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini unavailable", "error", err)
		} else {
			defer gem.Close()
			replies = gem
		}
	}

	//管理者ログイン
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	adminHash := cfg.AdminPasswordHash
	if adminHash == "" {
		adminHash, err = usecase.NewBcryptPasswordHasher(12).Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}
	}

	//usecaseに渡す部品
	ids := usecase.UUIDGenerator{}
	clock := usecase.RealClock{}
	rules := pricing.Rules{
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		BaseDeliveryCharge:    cfg.BaseDeliveryCharge,
	}

	//Usecase生成
	checkoutUC := usecase.NewCheckoutUsecase(txm, pg, publisher, ids, clock, rules, cfg.Currency)
	productUC := usecase.NewProductUsecase(productRepo, txm, ids, clock)
	cartUC := usecase.NewCartUsecase(carts, productRepo, checkoutUC)
	orderUC := usecase.NewOrderUsecase(txm)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, publisher, export.NewXLSXOrderWriter(), clock)
	adminAuthUC := usecase.NewAdminAuthUsecase(
		usecase.AdminCredential{Username: cfg.AdminUsername, PasswordHash: adminHash},
		usecase.NewBcryptPasswordVerifier(),
		issuer,
		clock,
	)
	chatUC := usecase.NewChatUsecase(replies)

	//Handler生成
	e := server.New(logger, cfg.FEURL)
	server.RegisterRoutes(e, server.Handlers{
		Products:      handler.NewProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Payments:      handler.NewPaymentHandler(checkoutUC, cartUC),
		Orders:        handler.NewOrderHandler(orderUC),
		Chat:          handler.NewChatHandler(chatUC),
		AdminAuth:     handler.NewAdminAuthHandler(adminAuthUC),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		AdminOrders:   handler.NewAdminOrderHandler(adminOrderUC, hub),
	}, cfg.JWTSecret)

	//Server起動
	return server.Run(ctx, e, ":"+cfg.Port, logger)
}
