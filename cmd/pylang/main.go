package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/panyam/pylang/cmd/pylang/commands"
)

func main() {
	envfile := ".env"
	if os.Getenv("PYLANG_ENV") == "dev" {
		envfile = ".env.dev"
		commands.LogLevel.Set(slog.LevelDebug)
	}
	// A missing env file is normal outside a checkout.
	envErr := godotenv.Load(envfile)

	logger := slog.New(NewPrettyHandler(os.Stderr, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: commands.LogLevel},
	}))
	slog.SetDefault(logger)
	if envErr == nil {
		slog.Debug("loaded env file", "path", envfile)
	}

	commands.Execute()
}
