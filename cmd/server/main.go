package main

import (
	"context"
	"fmt"
	"log"

	"reportes-ciudadanos/internal/cache"
	"reportes-ciudadanos/internal/config"
	"reportes-ciudadanos/internal/database"
	"reportes-ciudadanos/internal/handlers"
	"reportes-ciudadanos/internal/models"
	"reportes-ciudadanos/internal/repository"
	"reportes-ciudadanos/internal/server"
	"reportes-ciudadanos/internal/service"
	"reportes-ciudadanos/internal/storage"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg.DBDSN)

	users := repository.NewUserStore(db)
	database.Seed(context.Background(), users, []database.SeedUser{
		{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Role: models.RoleAdmin},
		{Email: cfg.UserEmail, Password: cfg.UserPassword, Role: models.RoleUser},
	})

	photos, err := storage.NewPhotoStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	statsCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.StatsCacheTTL)
	defer statsCache.Close()

	var sc service.StatsCache
	if statsCache != nil {
		sc = statsCache
	}
	reports := service.NewReportService(repository.NewReportStore(db), photos, sc, cfg.MaxUploadBytes)

	h := handlers.New(users, reports, !cfg.Production())
	r := server.NewRouter(cfg, h)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
