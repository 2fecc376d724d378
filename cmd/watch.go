package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/obrienhr/cv-triage/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// debounceDelay batches a burst of filesystem events (a copy of many CVs at
// once) into a single run.
const debounceDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the input folder and process new resumes as they arrive",
	Run: func(_ *cobra.Command, _ []string) {
		watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watch runs batches until interrupted. Notifications are always auto-approved
// here: there is no operator at the prompt in watch mode.
func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the cv-triage watcher", zap.String("version", version))

	deps, err := buildDeps(config, logger)
	if err != nil {
		logger.Fatal("building pipeline dependencies", zap.Error(err))
	}

	folder, err := openFolder(config, logger)
	if err != nil {
		logger.Fatal("preparing input folder", zap.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Fatal("creating filesystem watcher", zap.Error(err))
	}
	defer watcher.Close()

	inputDir := defaultInputDir
	if config.Input != nil && config.Input.Dir != "" {
		inputDir = config.Input.Dir
	}
	if err := watcher.Add(inputDir); err != nil {
		logger.Fatal("watching input folder", zap.Error(err), zap.String("dir", inputDir))
	}

	out := outputPaths(config)

	// Pick up anything that arrived before the watcher started.
	if err := executeBatch(ctx, folder, deps, out, true); err != nil {
		logger.Fatal("initial batch failed", zap.Error(err))
	}

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	logger.Info("watching for new documents", zap.String("dir", inputDir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("exiting", zap.String("reason", "shutdown signal received"))
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("filesystem event", zap.String("event", event.String()))
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("filesystem watcher error", zap.Error(err))

		case <-debounce.C:
			if err := executeBatch(ctx, folder, deps, out, true); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("batch failed", zap.Error(err))
			}
		}
	}
}
