package main

import (
	"context"
	"ecourse-admin/internal/config"
	delivery "ecourse-admin/internal/delivery/http"
	"ecourse-admin/internal/delivery/http/utils"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/repo/cockroach"
	"ecourse-admin/internal/repo/kafka"
	"ecourse-admin/internal/repo/s3"
	"ecourse-admin/internal/repo/tinify"
	"ecourse-admin/internal/usecase/service"
	"ecourse-admin/pkg/connector"
	"ecourse-admin/pkg/goosehelper"
	"ecourse-admin/pkg/retry"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка в конфигурации: %v", err)
	}
	if err := cfg.Validate(config.GatewayRequired); err != nil {
		log.Fatalf("Ошибка в конфигурации: %v", err)
	}
	policy := retry.Policy{
		Timeout:      cfg.UpstreamTimeout,
		MaxRetries:   cfg.UpstreamRetries,
		InitialDelay: 200 * time.Millisecond,
	}

	// cockroach
	DBConn, err := connector.GetCockroachConnector(cfg.DBConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		err := DBConn.Close()
		if err != nil {
			log.Errorf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()
	if err := goosehelper.MigrateUp(DBConn.DB, cfg.MigrationsDir); err != nil {
		log.Fatalf("Ошибка при применении миграций: %v", err)
	}

	// minio
	minioClient, err := connector.GetMinioConnector(connector.MinioParams{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		log.Fatalf("Ошибка при подключении к MinIO: %v", err)
	}
	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	blobRepo, err := s3.NewBlob(setupCtx, minioClient, s3.BlobParams{
		Bucket:        cfg.Minio.Bucket,
		PublicBaseURL: cfg.Minio.PublicBaseURL,
		Policy:        policy,
	})
	setupCancel()
	if err != nil {
		log.Fatalf("Ошибка при подготовке хранилища картинок: %v", err)
	}

	// kafka (необязательно)
	var events repo.CourseEvent = kafka.NewDiscard()
	if len(cfg.KafkaBrokers) > 0 {
		events, err = kafka.NewCourseEventKafkaRepository(cfg.KafkaBrokers, "")
		if err != nil {
			log.Fatalf("Ошибка при подключении к Kafka: %v", err)
		}
	} else {
		log.Warn("KAFKA_BROKERS не задан, события курсов не публикуются")
	}
	if closer, ok := events.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	// запускаем сервисы репозиториев (подключение к базе данных)
	courseRepo := cockroach.NewCourse(DBConn)
	memberRepo := cockroach.NewMember(DBConn)
	submissionRepo := cockroach.NewSubmission(DBConn)
	compressor := tinify.NewClient(cfg.Tinify.APIKey, cfg.Tinify.Endpoint, policy)

	// запускаем сервисы usecase (бизнес-логика)
	uploadUseCase := service.NewUpload(compressor, blobRepo, cfg.PictureMaxBytes)
	courseUseCase := service.NewCourse(courseRepo, uploadUseCase, events)
	memberUseCase := service.NewMember(memberRepo)
	submissionUseCase := service.NewSubmission(submissionRepo)

	// запускаем сервисы delivery (обработка запросов)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := delivery.NewMetrics(registry)
	courseDelivery := delivery.NewCourse(courseUseCase)
	memberDelivery := delivery.NewMember(memberUseCase)
	submissionDelivery := delivery.NewSubmission(submissionUseCase)
	healthDelivery := delivery.NewHealth(DBConn)

	// REST API
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Logger.SetLevel(log.INFO)

	echoServer.Pre(middleware.RemoveTrailingSlash())
	echoServer.Use(metrics.Middleware())
	// картинка не больше PICTURE_MAX_BYTES плюс запас на текстовые поля формы
	echoServer.Use(delivery.BodyLimit(cfg.PictureMaxBytes))
	log.Infof("Лимит тела запроса: %s", bytes.Format(cfg.PictureMaxBytes+delivery.FormOverhead))
	// gzip на прием
	echoServer.Use(middleware.Decompress())
	// gzip на отдачу
	echoServer.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	// request id
	echoServer.Use(middleware.RequestID())
	echoServer.Use(middleware.Recover())

	// CORS
	echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPut,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderAccept,
			echo.HeaderXRequestedWith,
			echo.HeaderContentType,
			echo.HeaderAuthorization,
		},
		MaxAge: 86400,
	}))

	// Endpoints
	metrics.Configure(echoServer)
	healthDelivery.Configure(echoServer)
	resource := echoServer.Group("/resource")
	if cfg.AdminJWTSecret != "" {
		authManager := utils.NewAuthManager([]byte(cfg.AdminJWTSecret), 24*time.Hour)
		resource.Use(utils.Middleware(authManager))
	} else {
		log.Warn("ADMIN_JWT_SECRET не задан, /resource доступен без авторизации")
	}
	// courses
	courses := resource.Group("/course")
	courseDelivery.Configure(courses)
	// members
	members := resource.Group("/member")
	memberDelivery.Configure(members)
	// submissions
	submissions := resource.Group("/submission")
	submissionDelivery.Configure(submissions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func(server *echo.Echo) {
		if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatalf("Сервер завершил свою работу по причине: %v\n", err)
		}
	}(echoServer)
	log.Infof("Сервер запущен на %s", cfg.HTTPAddr)

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(10)*time.Second,
	)
	defer cancel()
	if err := echoServer.Shutdown(ctx); err != nil {
		echoServer.Logger.Errorf("Во время выключения сервера возникла ошибка: %s\n", err)
	}
}
