package main

import (
	"flag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"virusscope/internal/api"
	"virusscope/internal/config"
	"virusscope/internal/models"
	"virusscope/internal/scorer"
	"virusscope/internal/store"
	"virusscope/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Logger().Fatal("load config", zap.Error(err))
	}
	logger, err := utils.NewLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		utils.Logger().Fatal("build logger", zap.Error(err))
	}
	defer logger.Sync()

	if err := api.RegisterValidators(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	policy, _ := cfg.Policy()
	registry := models.NewRegistry(cfg.Models.BinaryPath, cfg.Models.MulticlassPath, logger)
	if _, _, err := registry.Load(); err != nil {
		logger.Warn("starting with missing models", zap.Error(err))
	}
	sc := scorer.New(cfg.Scoring.GatedLabel, policy, logger.Named("scorer"))

	var audit api.Auditor
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			logger.Fatal("open audit store", zap.String("path", cfg.Store.Path), zap.Error(err))
		}
		defer st.Close()
		audit = st
	}

	gin.SetMode(gin.ReleaseMode)
	h := api.NewHandler(sc, api.RegistrySource{Registry: registry}, audit, logger, api.Options{
		MaxParallel: cfg.Batch.MaxParallel,
		MaxItems:    cfg.Batch.MaxItems,
	})
	r := api.NewRouter(h, cfg.Server.APIKey)

	logger.Info("listening",
		zap.String("port", cfg.Server.Port),
		zap.String("gated_label", cfg.Scoring.GatedLabel),
		zap.String("threshold_mode", string(policy.Mode)),
		zap.Bool("audit", audit != nil),
	)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
