package main

import (
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envはローカル開発用（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.InventoryAdjustment{},
		&model.Address{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部ゲートウェイ（決済・配送料金はモック実装）
	paymentGW := gateway.NewMockPaymentGateway()
	rateProvider := gateway.NewMockRateProvider()

	//イベント発行（KAFKA_BROKERS未設定なら発行しない）
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		publisher = events.NewNopPublisher()
	}
	defer publisher.Close()

	//発送元の都市コード（倉庫所在地）
	originCode := os.Getenv("SHIP_ORIGIN_CODE")
	if originCode == "" {
		originCode = "100"
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, validator.NewAuthValidator(userRepo))
	addressUC := usecase.NewAddressUsecase(addressRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, productRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, inventoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, addressRepo, rateProvider, publisher, originCode)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo, publisher)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo)
	paymentUC := usecase.NewPaymentUsecase(txManager, paymentGW, publisher)
	shippingUC := usecase.NewShippingUsecase(rateProvider)

	//Server + ルーティング登録
	e := server.New(cfg)

	handler.NewAuthHandler(cfg, authUC, userRepo).RegisterRoutes(e)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewCategoryHandler(categoryUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewPaymentHandler(paymentUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewShippingHandler(shippingUC).RegisterRoutes(e)
	handler.NewAdminProductHandler(productUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAdminOrderHandler(adminOrderUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAdminUserHandler(cfg, userRepo, authUC, adminUserUC).RegisterRoutes(e)

	//住所は認証必須グループに載せる
	authed := e.Group("",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)
	handler.NewAddressHandler(addressUC).RegisterRoutes(authed)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
