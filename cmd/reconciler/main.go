package main

import (
	"context"
	"ecourse-admin/internal/config"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/repo/cockroach"
	"ecourse-admin/internal/repo/kafka"
	"ecourse-admin/internal/repo/s3"
	"ecourse-admin/internal/usecase/service"
	"ecourse-admin/pkg/connector"
	"ecourse-admin/pkg/retry"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const consumerGroup = "ecourse-reconciler"

func main() {
	once := flag.Bool("once", false, "выполнить одну сверку и выйти")
	flag.Parse()

	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка в конфигурации: %v", err)
	}
	if err := cfg.Validate(config.ReconcilerRequired); err != nil {
		log.Fatalf("Ошибка в конфигурации: %v", err)
	}

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
		Policy: retry.Policy{
			Timeout:      cfg.UpstreamTimeout,
			MaxRetries:   cfg.UpstreamRetries,
			InitialDelay: 200 * time.Millisecond,
		},
	})
	setupCancel()
	if err != nil {
		log.Fatalf("Ошибка при подготовке хранилища картинок: %v", err)
	}

	var events repo.CourseEvent = kafka.NewDiscard()
	if len(cfg.KafkaBrokers) > 0 && !*once {
		events, err = kafka.NewCourseEventKafkaRepository(cfg.KafkaBrokers, consumerGroup)
		if err != nil {
			log.Fatalf("Ошибка при подключении к Kafka: %v", err)
		}
	}
	if closer, ok := events.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reconciler := service.NewReconciler(
		cockroach.NewCourse(DBConn),
		blobRepo,
		events,
		cfg.ReconcileGrace,
		cfg.ReconcileInterval,
		registry,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		report, err := reconciler.Sweep(ctx)
		if err != nil {
			log.Fatalf("Ошибка сверки картинок: %v", err)
		}
		log.Infof("Сирот: %d, удалено: %d, курсов без картинки: %d, ошибок: %d",
			len(report.OrphanedBlobs), report.DeletedBlobs, len(report.CoursesMissingBlobs), report.Errors)
		if report.Errors > 0 {
			log.Fatalf("Сверка завершена с ошибками: %d", report.Errors)
		}
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Сервер метрик завершил работу: %v", err)
		}
	}()

	reconciler.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Во время выключения сервера метрик возникла ошибка: %v", err)
	}
}
