package main

import (
	stdLog "log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dkenzhe/library-service/library/app"
	"github.com/dkenzhe/library-service/library/config"
)

// @title        Library Management API
// @version      1.0
// @description  Users, lendable items, loans, reading targets and audit log.
// @BasePath     /api/v1

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
