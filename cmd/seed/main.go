package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contoso-university-api/internal/bootstrap"
	"github.com/noah-isme/contoso-university-api/internal/seed"
	"github.com/noah-isme/contoso-university-api/pkg/config"
	"github.com/noah-isme/contoso-university-api/pkg/logger"
)

func main() {
	var (
		dataPath string
		timeout  time.Duration
	)
	flag.StringVar(&dataPath, "file", "", "YAML seed file (defaults to the bundled sample data)")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall seeding timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg.Database, nil, logr)
	if err != nil {
		logr.Fatal("failed to open school store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	data, err := loadData(dataPath)
	if err != nil {
		logr.Fatal("failed to read seed data", zap.String("file", dataPath), zap.Error(err))
	}

	listCache, err := bootstrap.OpenCache(ctx, cfg.Cache, cfg.Redis, nil, logr)
	if err != nil {
		logr.Warn("redis unavailable, cached student lists expire only after CACHE_TTL", zap.Error(err))
	}
	if listCache != nil {
		defer listCache.Close() //nolint:errcheck
	}

	report, err := seed.NewLoader(store, logr).OnStudentsChanged(listCache.InvalidateStudents).Load(ctx, data)
	if err != nil {
		logr.Fatal("seeding failed", zap.Error(err))
	}
	logr.Sugar().Infow("seeding finished",
		"students_inserted", report.StudentsInserted,
		"courses_inserted", report.CoursesInserted,
		"enrollments_inserted", report.EnrollmentsInserted,
	)
}

func loadData(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(raw)
}
