package main

import (
	"context"
	"flag"

	"github.com/kbukum/authgate/app"
	"github.com/kbukum/authgate/config"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/version"
)

var (
	configFile = flag.String("config", "", "path to config.yml (default: search cmd/authgate, config/, .)")
	envFile    = flag.String("env", "", "path to a .env file")
)

func main() {
	flag.Parse()
	boot := logger.NewDefault(app.ServiceName)

	var cfg app.Config
	opts := []config.LoaderOption{}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig(app.ServiceName, &cfg, opts...); err != nil {
		boot.Fatal("Failed to load configuration", logger.ErrorFields("load_config", err))
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().String()
	}

	a, err := app.Build(&cfg)
	if err != nil {
		boot.Fatal("Failed to build application", logger.ErrorFields("build", err))
	}
	if err := a.Run(context.Background()); err != nil {
		a.Logger.Fatal("Application stopped with error", logger.ErrorFields("run", err))
	}
}
