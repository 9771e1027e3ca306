package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/blukai/robots/internal/config"
	"github.com/blukai/robots/internal/robotsclient"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/pflag"
)

func configureLogger(level log.Level) *log.Logger {
	logger := log.DefaultLogger

	// https://github.com/phuslu/log?tab=readme-ov-file#pretty-console-writer
	logger.Caller = 1
	logger.TimeFormat = "15:04:05"
	logger.Level = level
	logger.Writer = &log.ConsoleWriter{
		ColorOutput:    true,
		QuoteString:    true,
		EndWithMessage: true,
	}

	return &logger
}

func erringMain() error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}

	config, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		return fmt.Errorf("could not process config: %w", err)
	}

	logger := configureLogger(config.Level())

	robotsClient, err := robotsclient.NewRobotsClient(config.RobotsClient(), logger)
	if err != nil {
		return fmt.Errorf("could not construct robots client: %w", err)
	}
	logger.Info().Msgf("started session %s", robotsClient.SessionID())

	wg := new(sync.WaitGroup)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg.Add(1)
	runErrCh := make(chan error, 1)
	go func() {
		defer wg.Done()
		runErrCh <- robotsClient.Run(ctx)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)

	var runErr error
	select {
	case sig := <-signalChan:
		logger.Info().Msgf("received %+v signal", sig)
		cancel()
		runErr = <-runErrCh
	case runErr = <-runErrCh:
	}

	wg.Wait()
	if runErr != nil {
		return fmt.Errorf("robots client run failed: %w", runErr)
	}

	return nil
}

func main() {
	if err := erringMain(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "robots-client: %v\n", err)
		os.Exit(1)
	}
}
