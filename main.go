package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/camgate/camgate/cmd"
	"github.com/camgate/camgate/internal/bus"
	"github.com/camgate/camgate/internal/config"
	"github.com/camgate/camgate/internal/events"
	"github.com/camgate/camgate/internal/logging"
	"github.com/camgate/camgate/internal/metrics"
	"github.com/camgate/camgate/internal/pipeline"
	"github.com/camgate/camgate/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Camera settings, comma-separated for multiple cameras
	CameraIP        string `help:"Camera hosts" toml:"camera.ip" env:"CAMERA_IP"`
	CameraPort      string `help:"RTSP ports" toml:"camera.port" env:"CAMERA_PORT"`
	CameraURISuffix string `help:"Stream path suffixes" toml:"camera.uri_suffix" env:"CAMERA_URI_SUFFIX"`
	CameraUsername  string `help:"Usernames" toml:"camera.username" env:"CAMERA_USERNAME"`
	CameraPassword  string `help:"Passwords" toml:"camera.password" env:"CAMERA_PASSWORD"`
	StreamIndex     string `help:"Video sub-stream indices" toml:"camera.stream_index" env:"STREAM_INDEX"`

	// Decoder settings
	FFmpegPath string `help:"Path to the ffmpeg binary" default:"ffmpeg" toml:"decoder.ffmpeg_path" env:"FFMPEG_PATH"`

	// Message bus settings
	BusURL     string `help:"NATS server URL" default:"nats://127.0.0.1:4222" toml:"bus.url" env:"BUS_URL"`
	BusSubject string `help:"Subject frames are published on" default:"camgate.frames" toml:"bus.subject" env:"BUS_SUBJECT"`

	// Metrics settings
	MetricsPort string `help:"Prometheus metrics listen address, empty disables" default:":9100" toml:"metrics.port" env:"METRICS_PORT"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCamera   string `help:"Camera logging level" default:"info" toml:"logging.camera" env:"LOGGING_CAMERA"`
	LoggingFFmpeg   string `help:"FFmpeg diagnostics logging level" default:"info" toml:"logging.ffmpeg" env:"LOGGING_FFMPEG"`
	LoggingPipeline string `help:"Pipeline logging level" default:"info" toml:"logging.pipeline" env:"LOGGING_PIPELINE"`
	LoggingBus      string `help:"Message bus logging level" default:"info" toml:"logging.bus" env:"LOGGING_BUS"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"camera":   opts.LoggingCamera,
				"ffmpeg":   opts.LoggingFFmpeg,
				"pipeline": opts.LoggingPipeline,
				"bus":      opts.LoggingBus,
			},
		})
		logger := logging.GetLogger("main")
		logger.Info("Starting camgate", "version", version.String())

		cameras, err := config.ParseCameras(config.CameraSettings{
			IP:          opts.CameraIP,
			Port:        opts.CameraPort,
			URISuffix:   opts.CameraURISuffix,
			Username:    opts.CameraUsername,
			Password:    opts.CameraPassword,
			StreamIndex: opts.StreamIndex,
		})
		if err != nil {
			logger.Error("Invalid camera configuration", "error", err)
			os.Exit(1)
		}
		logger.Info("Resolved camera configuration", "cameras", len(cameras))

		eventBus := events.New()
		detachMetrics := metrics.Attach(eventBus)

		publisher := bus.NewFramePublisher(opts.BusURL, opts.BusSubject, logging.GetLogger("bus"))
		pipe := pipeline.New(cameras, opts.FFmpegPath, publisher, eventBus, logging.GetLogger("pipeline"))

		// Camera settings are resolved once at startup; a config edit needs
		// a process restart, so just say so.
		watcher := config.NewConfigWatcher(opts.Config, func(string) (struct{}, error) {
			return struct{}{}, nil
		}, logging.GetLogger("config"))
		watcher.OnReload(func(struct{}) {
			logger.Warn("Configuration file changed, restart required to apply", "config", opts.Config)
		})

		var metricsServer *http.Server
		if opts.MetricsPort != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.HTTPHandler())
			metricsServer = &http.Server{Addr: opts.MetricsPort, Handler: mux}
		}

		ctx, cancel := context.WithCancel(context.Background())
		pipelineDone := make(chan struct{})

		hooks.OnStart(func() {
			if connErr := publisher.Connect(); connErr != nil {
				logger.Error("Failed to connect to message bus", "url", opts.BusURL, "error", connErr)
				os.Exit(1)
			}

			if metricsServer != nil {
				go func() {
					logger.Info("Starting metrics server", "addr", opts.MetricsPort)
					if serveErr := metricsServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
						logger.Error("Metrics server failed", "error", serveErr)
					}
				}()
			}

			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Failed to watch config file", "error", watchErr)
			}

			go func() {
				pipe.Run(ctx)
				close(pipelineDone)
			}()
			<-pipelineDone
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			cancel()

			select {
			case <-pipelineDone:
			case <-time.After(10 * time.Second):
				logger.Warn("Pipeline did not drain in time")
			}

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			if metricsServer != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()
				if stopErr := metricsServer.Shutdown(shutdownCtx); stopErr != nil {
					logger.Warn("Error stopping metrics server", "error", stopErr)
				}
			}
			detachMetrics()
			publisher.Close()
		})
	})

	root := cli.Root()
	root.Use = "camgate"
	root.Short = "RTSP camera to message bus frame gateway"
	root.Version = fmt.Sprintf("%s (%s)", version.String(), version.GitCommit)

	root.AddCommand(cmd.CreateProbeCmd())

	cli.Run()
}
