/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command server serves the brand and product catalogue over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/api"
	"github.com/tomoncle/brandhub/config"
	"github.com/tomoncle/brandhub/database"
	"github.com/tomoncle/brandhub/model"
	"github.com/tomoncle/brandhub/utils"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	utils.ConfigureLogLevel(cfg.Log.Level)
	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	logger := utils.GetLogger("SERVER")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	model.Register()
	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.WithError(err).Warn("close database")
		}
	}()

	prometheus.MustRegister(database.NewPoolStatsCollector(cfg.Database.ConnectionConfig.DBName, database.GetSQLDB))

	health := api.NewHealth()
	health.Register("database", api.DatabaseStatusChecker(database.GetHealthStatus))

	// Requests resolve the pool per call so they follow a reconnect.
	router := api.NewRouter(db,
		api.WithDBResolver(database.GetDB),
		api.WithLogger(utils.GetLogger("HTTP")),
		api.WithHealth(health),
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":        server.Addr,
			"environment": cfg.Environment,
			"database":    cfg.Database.ConnectionConfig.Type,
		}).Info("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
