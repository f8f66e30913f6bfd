package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saajjewels/storefront/config"
	"github.com/saajjewels/storefront/internal/app"
	"github.com/saajjewels/storefront/internal/shopapi"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate every table, then exit")
)

func main() {
	flag.Parse()

	if *h {
		flag.Usage()
		return
	}
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		if err := application.DBError(); err != nil {
			zap.S().Errorf("initdb: database unavailable: %v", err)
			return 1
		}
		if err := application.InitDb(); err != nil {
			zap.S().Errorf("initdb: %v", err)
			return 1
		}
		zap.S().Info("database initialized")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := shopapi.Compose(application)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		return application.StartBackgroundJobs(gctx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("storefront stopped: %v", err)
		return 1
	}
	return 0
}
