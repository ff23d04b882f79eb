package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hls-mirror/internal/mirror"
	"hls-mirror/internal/platform/config"
	"hls-mirror/internal/platform/logger"
	"hls-mirror/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	var (
		channelsFile   = config.GetEnv("CHANNELS_FILE", "channels.json")
		segmentsDir    = config.GetEnv("SEGMENTS_DIR", "segments")
		publishBase    = config.GetEnv("PUBLISH_BASE_URL", "http://127.0.0.1:8080/channels")
		window         = config.GetEnvInt("RETENTION_WINDOW", mirror.DefaultRetentionWindow)
		concurrency    = config.GetEnvInt("MIRROR_CONCURRENCY", 4)
		fetchTimeout   = config.GetEnvDuration("FETCH_TIMEOUT", 30*time.Second)
		channelTimeout = config.GetEnvDuration("CHANNEL_TIMEOUT", 2*time.Minute)
		resolverBin    = config.GetEnv("RESOLVER_BIN", "yt-dlp")
		resolverWait   = config.GetEnvDuration("RESOLVER_TIMEOUT", 60*time.Second)
		cookiesFile    = config.GetEnv("COOKIES_FILE", "cookies.txt")
		scanFallback   = config.GetEnvBool("MIRROR_SCAN_FALLBACK", false)
		interval       = config.GetEnvDuration("MIRROR_INTERVAL", 0)
		serveAddr      = config.GetEnv("SERVE_ADDR", "")
		logLevel       = config.GetEnv("LOG_LEVEL", "info")
		logFormat      = config.GetEnv("LOG_FORMAT", "text")
	)

	log := logger.New(logLevel, logFormat)

	channels, err := mirror.LoadChannels(channelsFile)
	if err != nil {
		log.Error("load channels", "error", err.Error())
		os.Exit(1)
	}

	store, err := mirror.NewDirStore(segmentsDir)
	if err != nil {
		log.Error("open segment store", "error", err.Error())
		os.Exit(1)
	}

	met := metrics.New()
	fetch := mirror.NewHTTPFetcher(fetchTimeout)

	var resolver mirror.Resolver = mirror.NewExecResolver(resolverBin, cookiesFile, resolverWait)
	if scanFallback {
		resolver = &mirror.ScanResolver{Primary: resolver, Fetch: fetch}
	}

	syn := mirror.NewSynchronizer(fetch, store, window, log, met)
	runner := mirror.NewRunner(resolver, fetch, store, syn, mirror.RunnerOptions{
		Concurrency:    concurrency,
		ChannelTimeout: channelTimeout,
		PublishBase:    publishBase,
	}, log, met)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("mirror starting",
		"channels", len(channels),
		"retention_window", window,
		"concurrency", concurrency,
	)

	var srv *http.Server
	if serveAddr != "" {
		r := chi.NewRouter()
		r.Use(logger.RequestLogger(log))
		r.Use(metrics.RequestMiddleware(met))
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			met.Handler().ServeHTTP(w, req)
		})
		mirror.NewHandler(store, log).Routes(r)

		srv = &http.Server{Addr: serveAddr, Handler: r}
		go func() {
			log.Info("artifact server listening", "addr", serveAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("server error", "error", err.Error())
				os.Exit(1)
			}
		}()
	}

	summary := runner.Run(ctx, channels)

	if interval <= 0 && srv == nil {
		// One-shot: exit status reflects whether any channel succeeded.
		if !summary.OK() {
			os.Exit(1)
		}
		return
	}

	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
				runner.Run(ctx, channels)
			}
		}
	} else {
		<-ctx.Done()
	}

	if srv != nil {
		log.Info("shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err.Error())
			os.Exit(1)
		}
	}

	log.Info("mirror stopped")
}
