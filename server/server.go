package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HomeStatus/config"
	"HomeStatus/db"
	"HomeStatus/logger"
	"HomeStatus/repository"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: 3,
		MaxAge:     28,
	})

	// 设置服务器超时
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	deviceRepo := repository.NewSQLiteDeviceRepository()
	controlRepo := repository.NewSQLiteControlRepository()
	scheduleRepo := repository.NewSQLiteScheduleRepository()
	blogRepo := repository.NewSQLiteBlogRepository()
	visitorRepo := repository.NewSQLiteVisitorRepository()

	// 初始化处理器
	apiHandler := NewAPIHandler(deviceRepo, controlRepo, scheduleRepo, blogRepo, visitorRepo, cfg)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Token")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 设备状态相关的API端点
	router.HandleFunc("/", apiHandler.RootHandler).Methods(http.MethodGet)
	router.HandleFunc("/version", apiHandler.VersionHandler).Methods(http.MethodGet)
	router.HandleFunc("/heartbeat", apiHandler.HeartbeatHandler).Methods(http.MethodPost)
	router.HandleFunc("/device", apiHandler.DeleteDeviceHandler).Methods(http.MethodGet)
	router.HandleFunc("/device/status", apiHandler.DeviceStatusUpdateHandler).Methods(http.MethodPost)
	router.HandleFunc("/status", apiHandler.StatusHandler).Methods(http.MethodGet)
	router.HandleFunc("/status/manual", apiHandler.GetManualStatusHandler).Methods(http.MethodGet)
	router.HandleFunc("/status/manual", apiHandler.SetManualStatusHandler).Methods(http.MethodPost)

	// 日程与博客内容管理
	router.HandleFunc("/schedule", apiHandler.ScheduleListHandler).Methods(http.MethodGet)
	router.HandleFunc("/schedule", apiHandler.ScheduleUpdateHandler).Methods(http.MethodPost)
	router.HandleFunc("/blog", apiHandler.BlogListHandler).Methods(http.MethodGet)
	router.HandleFunc("/blog", apiHandler.BlogUpdateHandler).Methods(http.MethodPost)
	router.HandleFunc("/blog/{slug}", apiHandler.BlogDetailHandler).Methods(http.MethodGet)

	// 访客计数
	router.HandleFunc("/visitor", apiHandler.VisitorStatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/visitor/visit", apiHandler.VisitorVisitHandler).Methods(http.MethodPost)

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		log.Printf("Server starting on %s...", server.Addr)
		logger.Info("homestatus server listening",
			logger.String("addr", server.Addr),
			logger.String("build", cfg.BuildVersion))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中断信号
	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
