package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"hwbot/internal/app"
	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

func main() {
	var cfgPath, envFile string
	flag.StringVar(&cfgPath, "config", "", "path to config json/yaml (optional)")
	flag.StringVar(&envFile, "env", ".env", "path to dotenv file (ignored if missing)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	boot := logx.NewConsole("INFO")

	a, err := app.New(app.Options{ConfigPath: cfgPath, EnvFile: envFile})
	if err != nil {
		if config.IsConfigError(err) {
			boot.Error("invalid configuration", logx.Err(err))
		} else {
			boot.Error("startup failed", logx.Err(err))
		}
		os.Exit(1)
	}

	runErr := a.Run(ctx)
	_ = a.Close()
	if runErr != nil {
		boot.Error("stopped with error", logx.Err(runErr))
		os.Exit(1)
	}
}
