package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/swarm-core/internal/psod"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
)

func main() {
	var configPath string
	var grpcAddr string
	var httpAddr string
	var logLevel string
	var archivePath string

	flag.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	flag.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (overrides config)")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&archivePath, "archive", "", "SQLite archive path (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if grpcAddr != "" {
		cfg.Server.GRPCAddr = grpcAddr
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if archivePath != "" {
		cfg.Server.ArchivePath = archivePath
	}

	log, err := logger.NewWithFormat(logger.Format(cfg.LogFormat), cfg.LogLevel, os.Stdout)
	if err != nil {
		logger.Error("invalid logger configuration", "error", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if err := run(cfg); err != nil {
		logger.Error("psod exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(cfg)
	if err != nil {
		return err
	}
	return d.serve(ctx)
}

// daemon holds the listeners and servers of one psod process. A server
// whose address is not configured is not started and its listener is nil.
type daemon struct {
	archive  psod.Archive
	executor *psod.RunExecutor

	grpcServer *grpc.Server
	grpcLis    net.Listener
	httpServer *http.Server
	httpLis    net.Listener
}

func newDaemon(cfg *config.Config) (*daemon, error) {
	d := &daemon{}
	if cfg.Server.ArchivePath != "" {
		a, err := psod.NewSQLiteArchive(cfg.Server.ArchivePath)
		if err != nil {
			return nil, err
		}
		d.archive = a
		logger.Info("run archive enabled", "path", cfg.Server.ArchivePath)
	}

	store := psod.NewRunStore()
	d.executor = psod.NewRunExecutor(store, d.archive, cfg.Server.MaxConcurrentRuns)

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("failed to listen for gRPC on %s: %w", cfg.Server.GRPCAddr, err)
		}
		d.grpcLis = lis
		// TODO: Configure gRPC server security (TLS, authentication) before
		// exposing this service outside a trusted network.
		d.grpcServer = grpc.NewServer()
		psod.RegisterSwarmServiceServer(d.grpcServer, psod.NewSwarmGRPCServer(store, d.executor))
	}

	if cfg.Server.HTTPAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.HTTPAddr)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("failed to listen for HTTP on %s: %w", cfg.Server.HTTPAddr, err)
		}
		d.httpLis = lis
		d.httpServer = &http.Server{
			Handler:           psod.NewHTTPServer(store, d.executor, d.archive).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
	}

	if d.grpcLis == nil && d.httpLis == nil {
		d.close()
		return nil, errors.New("no server address configured")
	}
	return d, nil
}

// serve runs the configured servers until ctx ends, then shuts down.
func (d *daemon) serve(ctx context.Context) error {
	defer d.close()

	g, gctx := errgroup.WithContext(ctx)
	if d.grpcServer != nil {
		g.Go(func() error {
			logger.Info("gRPC server listening", "addr", d.grpcLis.Addr().String())
			if err := d.grpcServer.Serve(d.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}
	if d.httpServer != nil {
		g.Go(func() error {
			logger.Info("HTTP server listening", "addr", d.httpLis.Addr().String())
			if err := d.httpServer.Serve(d.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := d.executor.Shutdown(shutdownCtx); err != nil {
			logger.Warn("runs still active at shutdown", "error", err)
		}
		if d.grpcServer != nil {
			d.grpcServer.GracefulStop()
		}
		if d.httpServer != nil {
			if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP shutdown error", "error", err)
			}
		}
		return nil
	})
	return g.Wait()
}

// close releases the listeners and the archive. Listeners already closed by
// their server report an error that is ignored.
func (d *daemon) close() {
	for _, lis := range []net.Listener{d.grpcLis, d.httpLis} {
		if lis != nil {
			_ = lis.Close()
		}
	}
	if d.archive != nil {
		if err := d.archive.Close(); err != nil {
			logger.Warn("failed to close archive", "error", err)
		}
		d.archive = nil
	}
}
