package config

import (
	"github.com/ferdian3456/rosterbridge/internal/debounce"
	"github.com/ferdian3456/rosterbridge/internal/delivery/http"
	"github.com/ferdian3456/rosterbridge/internal/delivery/http/middleware"
	"github.com/ferdian3456/rosterbridge/internal/delivery/http/route"
	"github.com/ferdian3456/rosterbridge/internal/delivery/messaging"
	"github.com/ferdian3456/rosterbridge/internal/repository"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/minio/minio-go/v7"
	"github.com/segmentio/kafka-go"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router     *fiber.App
	DB         *pgxpool.Pool
	DBCache    *redis.Client
	Log        *zap.Logger
	Config     *koanf.Koanf
	MinIO      *minio.Client
	RoleBridge usecase.RoleBridge
	Barrier    usecase.Barrier
	// Guard overrides the debounce guard NewDebounceGuard builds over DBCache.
	Guard      debounce.Guard
	Reader     *kafka.Reader
}

// Server wires repositories, usecases and routes. It returns the member update consumer, nil when
// no kafka reader is configured.
func Server(config *ServerConfig) *messaging.MemberUpdateConsumer {
	departmentRepository := repository.NewDepartmentRepository(config.Log, config.DB)
	memberRepository := repository.NewMemberRepository(config.Log, config.DB)
	promotionRepository := repository.NewPromotionRepository(config.Log, config.DB)
	archiveRepository := repository.NewArchiveRepository(config.Log, config.MinIO, config.Config.String("MINIO_BUCKET_NAME"))

	authorizer := usecase.NewAuthorizer(departmentRepository, memberRepository)
	capacityUsecase := usecase.NewCapacityUsecase(departmentRepository, memberRepository, config.Log)
	reconcileUsecase := usecase.NewReconcileUsecase(departmentRepository, memberRepository, config.RoleBridge, authorizer, config.Log)
	lifecycleUsecase := usecase.NewLifecycleUsecase(departmentRepository, memberRepository, config.RoleBridge, authorizer, config.Log)
	promotionUsecase := usecase.NewPromotionUsecase(departmentRepository, memberRepository, promotionRepository, config.RoleBridge,
		capacityUsecase, reconcileUsecase, authorizer, config.Barrier, config.Log)
	historyUsecase := usecase.NewHistoryUsecase(departmentRepository, memberRepository, promotionRepository, archiveRepository, authorizer, config.Log)
	guard := config.Guard
	if guard == nil {
		guard = NewDebounceGuard(config.Config, config.DBCache, config.Log)
	}
	memberUpdateUsecase := usecase.NewMemberUpdateUsecase(reconcileUsecase, guard, config.Log)

	departmentController := http.NewDepartmentController(capacityUsecase, reconcileUsecase, historyUsecase, config.Log, config.Config)
	memberController := http.NewMemberController(promotionUsecase, lifecycleUsecase, historyUsecase, config.Log, config.Config)
	userController := http.NewUserController(reconcileUsecase, config.Log, config.Config)
	platformController := http.NewPlatformController(memberUpdateUsecase, config.Log, config.Config)

	authMiddleware := middleware.NewAuthMiddleware(config.Log, config.Config)

	routeConfig := route.RouteConfig{
		App:                  config.Router,
		AuthMiddleware:       authMiddleware,
		WebhookMiddleware:    middleware.APIKeyRoute(config.Config.String("WEBHOOK_API_KEY"), config.Log),
		RateLimiter:          middleware.SetupRateLimiter(config.Log),
		PromotionRateLimiter: middleware.SetupPromotionRateLimiter(config.Log),
		DepartmentController: departmentController,
		MemberController:     memberController,
		UserController:       userController,
		PlatformController:   platformController,
	}

	routeConfig.SetupRoute()

	if config.Reader == nil {
		return nil
	}

	return messaging.NewMemberUpdateConsumer(config.Reader, memberUpdateUsecase, config.Log)
}
