package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DevN0mad/HRDashboard/internal/analytics"
)

// DailyJobOpts параметры необходимые для работы сервиса.
type DailyJobOpts struct {
	Hour   int `mapstructure:"hour" yaml:"hour" validate:"min=0,max=23"`
	Minute int `mapstructure:"minute" yaml:"minute" validate:"min=0,max=59"`
}

// DailyJobService каждый день в заданное время строит Excel-отчет
// по текущей выборке и рассылает его в подписанные чаты.
type DailyJobService struct {
	botServ    *TelegramBotService
	reportServ *ReportService
	dataset    *DatasetService
	hour       int
	minute     int
	timezone   *time.Location
	logger     *slog.Logger
}

// NewDailyJobService создаёт сервис для ежедневной рассылки отчета.
func NewDailyJobService(
	botServ *TelegramBotService,
	reportServ *ReportService,
	dataset *DatasetService,
	opts DailyJobOpts,
	logger *slog.Logger,
) (*DailyJobService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if botServ == nil {
		return nil, fmt.Errorf("bot service is required")
	}

	if reportServ == nil {
		return nil, fmt.Errorf("report service is required")
	}

	if dataset == nil {
		return nil, fmt.Errorf("dataset service is required")
	}

	logger.Info("Daily job configured",
		"hour", opts.Hour,
		"minute", opts.Minute,
		"timezone", time.Local.String())

	return &DailyJobService{
		botServ:    botServ,
		reportServ: reportServ,
		dataset:    dataset,
		hour:       opts.Hour,
		minute:     opts.Minute,
		timezone:   time.Local,
		logger:     logger,
	}, nil
}

// Start запускает цикл рассылки.
func (d *DailyJobService) Start(ctx context.Context) {
	nextRun := d.nextRunTime()
	timer := time.NewTimer(time.Until(nextRun))
	d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutdown requested")
			timer.Stop()
			return
		case <-timer.C:
			if err := d.run(ctx); err != nil {
				d.logger.Error("Daily report sending failed", "error", err)
			} else {
				d.logger.Info("Daily report sent successfully")
			}

			nextRun = d.nextRunTime()
			timer.Reset(time.Until(nextRun))
			d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))
		}
	}
}

// run строит отчет и рассылает файл. Незагруженный набор данных
// и пустая выборка — штатные состояния, рассылка просто пропускается.
func (d *DailyJobService) run(ctx context.Context) error {
	report, err := d.dataset.Report()
	if err != nil {
		if errors.Is(err, ErrNoDataset) || errors.Is(err, analytics.ErrNoData) {
			d.logger.Info("No data for daily report, skipping", "reason", err)
			return nil
		}
		return fmt.Errorf("build report: %w", err)
	}

	path, err := d.reportServ.GenerateExcelReport()
	if err != nil {
		return fmt.Errorf("generate excel report: %w", err)
	}

	return d.botServ.Broadcast(ctx, path, digestCaption(report))
}

// nextRunTime вычисляет ближайшее время
func (d *DailyJobService) nextRunTime() time.Time {
	now := time.Now().In(d.timezone)
	today := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.timezone)

	if now.After(today) {
		return today.Add(24 * time.Hour)
	}
	return today
}
