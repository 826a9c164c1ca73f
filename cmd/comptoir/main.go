package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/comptoirlabs/comptoir/config"
	"github.com/comptoirlabs/comptoir/internal/adminapi"
	"github.com/comptoirlabs/comptoir/internal/app"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

var (
	confFile = flag.String("c", "/etc/comptoir.yml", "config file path")
	debug    = flag.Bool("d", false, "enable debug logging")
	initDb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("comptoir", version)
		return
	}

	cfg := config.LoadConfig(*confFile)
	if *debug {
		cfg.System.Debug = true
		cfg.Logger.Mode = "development"
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(application, cfg)
	adminapi.Register()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		zap.L().Info("shutting down", zap.String("signal", s.String()))
		webserver.Shutdown()
	}()

	if err := webserver.Listen(); err != nil {
		zap.L().Info("web server stopped", zap.Error(err))
	}
}
