package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joeywang/vidoer/application/processing"
	appupload "github.com/joeywang/vidoer/application/upload"
	"github.com/joeywang/vidoer/application/validation"
	"github.com/joeywang/vidoer/infrastructure/config"
	"github.com/joeywang/vidoer/infrastructure/ffmpeg"
	"github.com/joeywang/vidoer/infrastructure/filesystem"
	"github.com/joeywang/vidoer/infrastructure/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the video generation HTTP service",
	Long: `Start the HTTP service that accepts image and audio uploads and
turns them into MP4 videos.

The service listens on the configured port, writes received files and
generated videos to the upload directory, and purges stale files on the
configured schedule. It refuses to start when ffmpeg is not available.

Example:
  vidoer serve --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides configuration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; check %s", cfgFile)
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger := log.New(os.Stdout, "vidoer: ", log.LstdFlags)

	store := filesystem.NewStore(filesystem.WithLogger(logger))
	if err := store.EnsureDirectory(cfg.Paths.UploadDirectory); err != nil {
		return err
	}

	encoder := ffmpeg.NewEncoder(ffmpeg.WithFFmpegPath(cfg.Encoder.FFmpegPath))
	verifyCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := encoder.VerifyInstalled(verifyCtx); err != nil {
		return err
	}

	processor := processing.NewService(encoder, filesystem.NewChecker(), store, store,
		processing.WithTimeout(time.Duration(cfg.Encoder.TimeoutSeconds)*time.Second),
		processing.WithLogger(logger),
	)
	uploads := appupload.NewService(validation.NewService(), processor, store, appupload.Settings{
		OutputDir:    cfg.Paths.UploadDirectory,
		Resolution:   cfg.Encoder.Resolution,
		VideoCodec:   cfg.Encoder.VideoCodec,
		AudioCodec:   cfg.Encoder.AudioCodec,
		AudioBitrate: cfg.Encoder.AudioBitrate,
	})

	metrics := web.NewMetrics()
	handler := web.NewHandler(uploads, store, encoder, metrics, cfg.Paths.UploadDirectory, logger)
	router := web.NewRouter(web.RouterConfig{
		UploadDir:          cfg.Paths.UploadDirectory,
		MaxMultipartMemory: 8 << 20,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
	}, handler, metrics)
	server := web.NewServer(cfg.Server.Port, router, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runPurgeLoop(ctx, store, cfg, logger)

	return server.Run(ctx, time.Duration(cfg.Server.ShutdownGraceSeconds)*time.Second)
}

// runPurgeLoop deletes stale upload files on a fixed interval until ctx ends.
func runPurgeLoop(ctx context.Context, store *filesystem.Store, cfg *config.Config, logger *log.Logger) {
	interval := time.Duration(cfg.Cleanup.IntervalMinutes) * time.Minute
	maxAge := time.Duration(cfg.Cleanup.MaxAgeHours) * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.RemoveOlderThan(cfg.Paths.UploadDirectory, maxAge)
			if err != nil {
				logger.Printf("purge failed: %v", err)
				continue
			}
			if deleted > 0 {
				logger.Printf("purged %d stale files from %s", deleted, cfg.Paths.UploadDirectory)
			}
		}
	}
}
