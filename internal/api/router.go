package api

import (
	"fmt"
	"time"

	"nutrition-relay/internal/api/handlers/health"
	nutritionHandler "nutrition-relay/internal/api/handlers/nutrition"
	recommendHandler "nutrition-relay/internal/api/handlers/recommend"
	"nutrition-relay/internal/api/middleware"
	"nutrition-relay/internal/core/ai/cache"
	"nutrition-relay/internal/core/ai/service"
	"nutrition-relay/internal/core/image"
	"nutrition-relay/internal/core/normalize"
	nutritionService "nutrition-relay/internal/core/nutrition"
	recommendService "nutrition-relay/internal/core/recommend"
	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// base64 膨脹後再保留 JSON 欄位的空間
const bodyHeadroom = 64 << 10

// Services 路由所需的服務
type Services struct {
	AI        health.AIStatus
	Cache     cache.Store
	Nutrition *nutritionService.Service
	Recommend *recommendService.Service
}

// SetupRouter 依設定建立所有服務並設置路由；回傳的 cleanup 會釋放上游連線
func SetupRouter(cfg *config.Config, store cache.Store) (*gin.Engine, func(), error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	aliases, invalid := normalize.DefaultAliases().WithExtra(cfg.Normalize.Aliases)
	if len(invalid) > 0 {
		return nil, nil, fmt.Errorf("invalid normalize aliases: %v", invalid)
	}

	common.LogInfo("Initializing services",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.ActiveModel()),
		zap.String("api_key", config.MaskAPIKey(cfg.ActiveAPIKey())),
		zap.Bool("cache_enabled", store != nil),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.String("recommender", cfg.Recommender.BaseURL),
	)

	aiService, err := service.NewService(cfg, store, service.WithCacheValidator(nutritionService.CacheableResponse))
	if err != nil {
		common.LogError("Failed to initialize AI service", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	imageService := image.NewService(cfg.Image.MaxSizeBytes)
	nutritionSvc := nutritionService.NewService(aiService, imageService, normalize.NewNormalizer(aliases))

	recommender := recommendService.NewClient(cfg.Recommender.BaseURL, cfg.Recommender.Path, cfg.Recommender.Timeout)
	recommendSvc := recommendService.NewService(recommender, normalize.MenuNameRule{
		Reverse:   cfg.Recommender.ReverseMenuTokens,
		Delimiter: cfg.Recommender.MenuTokenDelimiter,
	})

	router := NewRouter(cfg, Services{
		AI:        aiService,
		Cache:     store,
		Nutrition: nutritionSvc,
		Recommend: recommendSvc,
	})

	cleanup := func() {
		recommender.Close()
		if err := aiService.Close(); err != nil {
			common.LogWarn("Failed to close AI service", zap.Error(err))
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("provider", aiService.ProviderName()),
		zap.String("model", aiService.Model()),
	)

	return router, cleanup, nil
}

// NewRouter 以既有服務註冊中間件與路由
func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	router := gin.New()

	// requestid 需在 Logger 之前，日誌才取得到請求 ID
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"*"}
	}
	router.Use(cors.New(corsCfg))

	router.Use(middleware.BodySizeLimit(cfg.Image.MaxSizeBytes*4/3 + bodyHeadroom))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	healthH := health.NewHandler(cfg, svc.AI, svc.Cache)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	nutritionH := nutritionHandler.NewHandler(svc.Nutrition)
	recommendH := recommendHandler.NewHandler(svc.Recommend)

	// 分析端點一律回傳紀錄，去重只套用在推薦代理
	dedup := middleware.Deduplication(cfg.DedupWindow)

	// 既有前端使用的路徑
	router.POST("/analyze-image", nutritionH.AnalyzeImage)
	router.POST("/analyze-text", nutritionH.AnalyzeText)
	router.POST("/get-recommendation", dedup, recommendH.GetRecommendation)

	api := router.Group("/api/v1")
	{
		analyze := api.Group("/analyze")
		{
			analyze.POST("/image", nutritionH.AnalyzeImage)
			analyze.POST("/text", nutritionH.AnalyzeText)
		}
		api.POST("/recommendation", dedup, recommendH.GetRecommendation)
	}

	return router
}
