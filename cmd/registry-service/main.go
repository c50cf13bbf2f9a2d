package main

import (
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tucarro/tucarro/internal/car"
	"github.com/tucarro/tucarro/internal/common/auth"
	"github.com/tucarro/tucarro/internal/common/config"
	"github.com/tucarro/tucarro/internal/common/db"
	"github.com/tucarro/tucarro/internal/common/logger"
	"github.com/tucarro/tucarro/internal/common/middleware"
	"github.com/tucarro/tucarro/internal/common/objstore"
	"github.com/tucarro/tucarro/internal/common/server"
	"github.com/tucarro/tucarro/internal/common/tracing"
	"github.com/tucarro/tucarro/internal/user"
)

var (
	configPath  = flag.String("config", "configs/registry-service.json", "配置文件路径")
	consulKVKey = flag.String("consul-config-key", "", "从 Consul KV 加载配置的键名，为空则只用本地配置")
)

func main() {
	flag.Parse()

	// 加载配置：本地文件打底，指定 KV 键时整体替换为 Consul 中的配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if *consulKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(cfg.Consul, *consulKVKey)
		if err != nil {
			panic(fmt.Sprintf("failed to load config from consul kv: %v", err))
		}
	}

	// 初始化日志
	log, err := logger.NewFromConfig(cfg.Log, "")
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪（注册到全局 tracer）
	_, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	// 初始化数据库
	gormDB, err := db.NewMySQL(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&user.User{}, &car.Car{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 令牌吊销名单：Redis 可用时共享，否则退化为进程内名单
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		revoker = auth.NewRedisRevoker(rdb)
	}

	// 对象存储（车辆照片），未启用时照片上传接口返回 503
	var uploader objstore.Uploader
	if cfg.Minio.Enabled {
		up, err := objstore.NewMinioUploader(cfg.Minio)
		if err != nil {
			log.Warnf("failed to init minio: %v", err)
		} else {
			uploader = up
		}
	}

	userRepo := user.NewGormRepo(gormDB)
	userSvc := user.NewService(userRepo, cfg.Auth)
	userHandler := user.NewHandler(userSvc, revoker)

	carRepo := car.NewGormRepo(gormDB)
	carSvc := car.NewService(carRepo, userSvc)
	searchSvc := car.NewSearchService(carRepo)
	carHandler := car.NewHandler(carSvc, searchSvc, uploader)

	// 全局限流：令牌桶容量与补充速率都取配置的 QPS
	var limiter middleware.RateLimiter
	if cfg.Server.RateQPS > 0 {
		limiter = middleware.NewTokenBucket(int64(cfg.Server.RateQPS), int64(cfg.Server.RateQPS))
	}

	// 启动统一的 HTTP 服务模板
	err = server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		userHandler.RegisterRoutes(r)
		carHandler.RegisterRoutes(r)
		return nil
	}, server.WithRevoker(revoker), server.WithRateLimiter(limiter))
	if err != nil {
		log.Fatalf("registry-service exited with error: %v", err)
	}
}
