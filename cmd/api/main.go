package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hrportal/attendance-widget-go/internal/config"
	appHTTP "github.com/hrportal/attendance-widget-go/internal/handler/http"
	"github.com/hrportal/attendance-widget-go/internal/pkg/clock"
	"github.com/hrportal/attendance-widget-go/internal/pkg/hrapi"
	"github.com/hrportal/attendance-widget-go/internal/pkg/sse"
	"github.com/hrportal/attendance-widget-go/internal/pkg/timer"
	"github.com/hrportal/attendance-widget-go/internal/repository/boltdb"
	reportService "github.com/hrportal/attendance-widget-go/internal/service/report"
	sessionService "github.com/hrportal/attendance-widget-go/internal/service/session"
)

const (
	reconcileTimeout = 15 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	loc := cfg.Location()
	clk := clock.System()

	boltClient, err := boltdb.NewClient(cfg.Session.StorePath)
	if err != nil {
		slog.Error("Failed to open session store", "path", cfg.Session.StorePath, "error", err)
		os.Exit(1)
	}
	defer boltClient.Close()

	gateway := hrapi.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, loc)
	store := boltdb.NewSessionStore(boltClient, cfg.Employee.ID)
	hub := sse.NewHub()

	liveTimer := timer.New(cfg.Session.TickInterval, clk, func(tick timer.Tick) {
		hub.Publish(cfg.Employee.ID, sse.Event{
			EmployeeID: cfg.Employee.ID,
			Name:       "timer_tick",
			Data:       tick,
		})
	})

	controller := sessionService.NewController(store, gateway, liveTimer, hub, clk, loc, cfg.Employee.ID)
	defer controller.Close()

	reportSvc := reportService.NewReportService(gateway, gateway, clk, loc, cfg.Employee.ID)

	attendanceHandler := appHTTP.NewAttendanceHandler(controller, reportSvc)
	streamHandler := appHTTP.NewStreamHandler(hub, controller)
	router := appHTTP.NewRouter(logger, cfg.App.FrontendURL, attendanceHandler, streamHandler)

	// Bring the local session view in line with the server before taking
	// traffic. A reconciliation failure is not fatal: the widget serves
	// with whatever the store held and retries on the next check-in.
	if cfg.Employee.ID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		if err := controller.Reconcile(ctx); err != nil {
			slog.Warn("Startup reconciliation failed", "error", err)
		}
		cancel()
	} else {
		slog.Warn("No ATTENDANCE_EMPLOYEE_ID configured; attendance endpoints will answer with guidance")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.App.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.App.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	level := slog.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", "attendance-widget"),
		slog.String("env", cfg.App.Env),
	)
}
