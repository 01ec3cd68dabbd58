package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/data/db"
	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/data/seed"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type seedConfig struct {
	LogMode  string `env:"LOG_MODE" env-default:"development"`
	Postgres db.Config
}

func main() {
	var file string
	var dryRun bool
	flag.StringVar(&file, "file", "", "course YAML file (defaults to the bundled reference courses)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate and print courses without writing")
	flag.Parse()

	raw := seed.DefaultCourses()
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("read %s: %v\n", file, err)
			os.Exit(1)
		}
		raw = b
	}
	courses, err := seed.ParseCourses(raw)
	if err != nil {
		fmt.Printf("parse courses: %v\n", err)
		os.Exit(1)
	}

	if dryRun {
		for _, c := range courses {
			fmt.Printf("course=%q tees=%d\n", c.Name, len(c.Tees))
			for _, t := range c.Tees {
				fmt.Printf("  tee=%q holes=%d par=%d yards=%d rating=%.1f slope=%.0f\n",
					t.TeeName, t.NumberOfHoles, t.ParTotal, t.TotalYards, t.CourseRatingMen, t.SlopeRatingMen)
			}
		}
		return
	}

	var cfg seedConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Printf("read env: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		log.Error("init postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()
	if err := pg.AutoMigrateAll(); err != nil {
		log.Error("automigrate", "error", err)
		os.Exit(1)
	}

	repo := repos.NewCourseRepo(pg.DB(), log)
	ctx := context.Background()
	var res seed.Result
	err = aggregates.NewGormTxRunner(pg.DB()).InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		res, err = seed.Courses(dbc, repo, courses, log)
		return err
	})
	if err != nil {
		log.Error("seed courses", "error", err)
		os.Exit(1)
	}
	fmt.Printf("created=%d skipped=%d\n", len(res.Created), len(res.Skipped))
}
