package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DevN0mad/HRDashboard/internal/config"
	"github.com/DevN0mad/HRDashboard/internal/server"
	"github.com/DevN0mad/HRDashboard/internal/services"
	"github.com/DevN0mad/HRDashboard/internal/storage"
)

// App представляет основное приложение, управляющее сервисами.
type App struct {
	logger  *slog.Logger
	rootCtx context.Context

	mu             sync.Mutex
	tg             *services.TelegramBotService
	dataset        *services.DatasetService
	reportServ     *services.ReportService
	dailyJob       *services.DailyJobService
	dashboardSrv   *server.DashboardServer
	servicesCancel context.CancelFunc
}

// NewApp создает новый экземпляр приложения с заданным логгером и корневым контекстом.
func NewApp(ctx context.Context, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &App{
		logger:  logger,
		rootCtx: ctx,
	}
}

// ApplyConfig применяет конфигурацию к приложению, инициализируя/переинициализируя сервисы.
func (a *App) ApplyConfig(cfg config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.servicesCancel != nil {
		a.logger.Info("Stopping previous services")
		a.servicesCancel()
		a.servicesCancel = nil
	}

	ctx, cancel := context.WithCancel(a.rootCtx)

	dataset := services.NewDatasetService(cfg.Dataset, a.logger)
	if cfg.Dataset.PreloadSample {
		dataset.LoadSample(0)
	}

	reportServ, err := services.NewReportService(dataset, cfg.Report, a.logger)
	if err != nil {
		cancel()
		return fmt.Errorf("init report service: %w", err)
	}

	// Бот, хранилище подписок и рассылка поднимаются только при
	// заданном токене: без него дашборд работает сам по себе.
	var tg *services.TelegramBotService
	var dailyJob *services.DailyJobService
	if cfg.TelegramBot.Token != "" {
		if cfg.Storage.DBPath == "" {
			cancel()
			return fmt.Errorf("init chat storage: %s", "storage db_path is required when telegram bot is configured")
		}

		chats, err := storage.NewChatStorage(cfg.Storage.DBPath, a.logger)
		if err != nil {
			cancel()
			return fmt.Errorf("init chat storage: %w", err)
		}

		tg, err = services.NewTelegramBot(cfg.TelegramBot, chats, a.logger)
		if err != nil {
			cancel()
			return fmt.Errorf("init telegram bot: %w", err)
		}

		dailyJob, err = services.NewDailyJobService(tg, reportServ, dataset, cfg.DailyJob, a.logger)
		if err != nil {
			cancel()
			return fmt.Errorf("init daily job: %w", err)
		}

		go tg.Start(ctx)
		go dailyJob.Start(ctx)
	} else {
		a.logger.Info("Telegram bot token is not set, daily digest disabled")
	}

	dashboardSrv := server.NewDashboardServer(a.logger, dataset, reportServ, &cfg.HttpServer)

	go func() {
		if err := dashboardSrv.Start(ctx); err != nil {
			a.logger.Error("Dashboard server exited with error", "error", err)
		}
	}()

	a.tg = tg
	a.dataset = dataset
	a.reportServ = reportServ
	a.dailyJob = dailyJob
	a.dashboardSrv = dashboardSrv
	a.servicesCancel = cancel

	a.logger.Info("Services reinitialized successfully with configuration")
	return nil
}

// Shutdown останавливает все запущенные сервисы приложения.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.servicesCancel != nil {
		a.logger.Info("Stopping services on shutdown")
		a.servicesCancel()
		a.servicesCancel = nil
	}
}
