package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"csvflow/cmd/controllers"
	"csvflow/internal/config"
	"csvflow/internal/repo"
	"csvflow/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const (
	defaultConfigPath = "secrets.json"
	scratchMaxAge     = 24 * time.Hour
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repo.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	logService, err := services.NewLogService(db)
	if err != nil {
		log.Fatalf("create log service: %v", err)
	}

	scratchService, err := services.NewScratchService(cfg.ScratchDir, scratchMaxAge, logService)
	if err != nil {
		log.Fatalf("create scratch service: %v", err)
	}
	if err := scratchService.Provision(); err != nil {
		log.Fatalf("provision scratch dir: %v", err)
	}

	csvFileService, err := services.NewCsvFileService(db)
	if err != nil {
		log.Fatalf("create csv file service: %v", err)
	}

	storageService, err := services.NewStorageService(
		cfg.S3Endpoint,
		cfg.S3Region,
		cfg.S3AccessKey,
		cfg.S3SecretKey,
		cfg.S3Bucket,
		cfg.UseSSL(),
	)
	if err != nil {
		log.Fatalf("create storage service: %v", err)
	}

	transformService, err := services.NewTransformService(cfg.TransformBaseURL, nil)
	if err != nil {
		log.Fatalf("create transform service: %v", err)
	}

	pipelineService, err := services.NewPipelineService(
		csvFileService,
		storageService,
		transformService,
		logService,
		cfg.ScratchDir,
		nil,
	)
	if err != nil {
		log.Fatalf("create pipeline service: %v", err)
	}

	csvFilesController, err := controllers.NewCsvFilesController(pipelineService, cfg.ScratchDir)
	if err != nil {
		log.Fatalf("create csv files controller: %v", err)
	}

	logsController, err := controllers.NewLogsController(logService)
	if err != nil {
		log.Fatalf("create logs controller: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
	corsConfig.AllowMethods = []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	if err := controllers.RegisterHealthRoutes(router); err != nil {
		log.Fatalf("register health routes: %v", err)
	}
	if err := csvFilesController.RegisterRoutes(router); err != nil {
		log.Fatalf("register csv files routes: %v", err)
	}
	if err := logsController.RegisterRoutes(router); err != nil {
		log.Fatalf("register logs routes: %v", err)
	}

	if err := startCron(scratchService); err != nil {
		log.Fatalf("start cron: %v", err)
	}

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

type scratchSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

func startCron(service scratchSweeper) error {
	if service == nil {
		return errors.New("scratch service is nil")
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc("@every 1h", func() {
		if _, err := service.Sweep(context.Background()); err != nil {
			log.Printf("sweep scratch dir: %v", err)
		}
	}); err != nil {
		return err
	}

	scheduler.Start()
	return nil
}
