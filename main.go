package main

import (
	"github.com/sirupsen/logrus"

	"github.com/Evian1k/VeloManage5/config"
	"github.com/Evian1k/VeloManage5/controllers"
	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	config.SetupLogger(cfg)

	logrus.Info("Starting VeloManage API server...")

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Incident{},
		&models.Service{},
		&models.Part{},
		&models.ServicePart{},
		&models.ServiceRecord{},
		&models.ServiceRecordPart{},
		&models.Appointment{},
	); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}
	logrus.Info("Database migration completed successfully")

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var store services.ObjectStore
	if cfg.AWSS3Bucket != "" {
		s3Store, err := services.NewS3Store(cfg)
		if err != nil {
			logrus.WithError(err).Fatal("failed to initialize S3 store")
		}
		store = s3Store
	} else {
		logrus.Warn("AWS_S3_BUCKET not set, using in-memory object store")
		store = services.NewMockObjectStore()
	}

	router := controllers.NewRouter(controllers.Deps{
		DB:     db,
		Config: cfg,
		Tokens: tokens,
		Store:  store,
	})

	addr := ":" + cfg.Port
	logrus.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}
