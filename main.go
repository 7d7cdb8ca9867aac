package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/42Wor/Compress-image-M-dev/compression"
	"github.com/42Wor/Compress-image-M-dev/conf"
	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/42Wor/Compress-image-M-dev/embedfs"
	"github.com/justinas/alice"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const timeFormat = "2006-01-02 15:04:05.000"

func main() {
	setupLogging(false)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a tint handler on stderr, printing DEBUG logs if debug is set.
// Colors are only used when stderr is a terminal.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	})))
}

func newRootCmd() *cobra.Command {
	var configYml string

	root := &cobra.Command{
		Use:   "compressimg",
		Short: "Re-encode images at a chosen quality or to fit a target size",
		Long: `compressimg serves a small web app that re-encodes uploaded images,
either at a fixed quality or by stepping quality down until the result
fits a target size. The same engine is available offline via "compress".

Running without a subcommand starts the web server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configYml)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("compressimg (%s/%s, %s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version()))
	root.PersistentFlags().StringVar(&configYml, "config", "compressimg.yml", "path to compressimg.yml")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configYml)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "healthcheck",
		Short: "Verify health of the running service & exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conf.ReadConfig(configYml)
			if err != nil {
				return err
			}
			if code := core.VerifyHealthCheck(cfg.Web.Host, cfg.Web.Port); code != 0 {
				return errors.New("healthcheck failed")
			}
			return nil
		},
	})
	root.AddCommand(newCompressCmd())
	return root
}

func runServe(ctx context.Context, configYml string) error {
	slog.Info(conf.AppName, "build-timestamp", conf.BuildTimestamp)

	// Read config before any routine maintenance is performed.
	cfg, err := conf.ReadConfig(configYml)
	if err != nil {
		slog.Error("Failed to parse config", tint.Err(err))
		return err
	}

	// If debug mode was turned on in the config file, print logs at DEBUG or above.
	if cfg.Debug {
		setupLogging(true)
	}

	svc, err := compression.New(cfg)
	if err != nil {
		slog.Error("Failed to set up compression service", tint.Err(err))
		return err
	}

	// Set up a graceful cleanup for when the process is terminated.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up cron task for routine maintenance.
	go func() {
		// Do a one-off cleanup before scheduling a recurring task.
		performMaintenance(svc)
		ticker := time.NewTicker(cfg.Maintenance.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				performMaintenance(svc)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Set up the Web server and start serving.
	addr := net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           alice.New(core.SecurityHeaders, core.LogRequests).Then(newMux(cfg, svc)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "url", "http://"+displayAddr(cfg.Web.Host, cfg.Web.Port)) // Not "https://", since this app does not terminate SSL.
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		slog.Error("Server failed", tint.Err(err))
		return err
	case <-ctx.Done():
	}

	fmt.Println()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Compression.Timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown did not complete cleanly", tint.Err(err))
		return err
	}
	slog.Info("Shutdown successfully!")
	return nil
}

func newMux(cfg conf.AppConfig, svc *compression.Service) *http.ServeMux {
	mux := http.NewServeMux()
	core.SetupHealthCheck(mux)
	core.ServeWebManifest(mux, conf.AppName, "/", "#2575fc")
	embedfs.ServeStaticFS(mux)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := IndexTempl(cfg).Render(req.Context(), w); err != nil {
			slog.Error("Failed to render index", tint.Err(err))
		}
	})
	svc.SetupHandlers(mux)
	return mux
}

func displayAddr(host string, port int) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
