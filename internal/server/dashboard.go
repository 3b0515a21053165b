package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DevN0mad/HRDashboard/internal/analytics"
	"github.com/DevN0mad/HRDashboard/internal/models"
	"github.com/DevN0mad/HRDashboard/internal/services"
)

const APIv1Prefix = "/api/v1/"

const maxUploadBytes = 32 << 20

// DashboardServerOpts параметры для настройки сервера дашборда.
type DashboardServerOpts struct {
	Address             string `mapstructure:"address" yaml:"address" validate:"required"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds" validate:"min=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds" validate:"min=0"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds" yaml:"idle_timeout_seconds" validate:"min=0"`
}

// DashboardServer отдает KPI и серии для графиков по HTTP.
type DashboardServer struct {
	logger     *slog.Logger
	opts       *DashboardServerOpts
	srv        *http.Server
	dataset    *services.DatasetService
	reportServ *services.ReportService
}

// NewDashboardServer создаёт новый сервер дашборда.
func NewDashboardServer(
	logger *slog.Logger,
	dataset *services.DatasetService,
	reportServ *services.ReportService,
	opts *DashboardServerOpts,
) *DashboardServer {
	return &DashboardServer{
		logger:     logger,
		opts:       opts,
		dataset:    dataset,
		reportServ: reportServ,
	}
}

// Register регистрирует маршруты сервера дашборда.
func (h *DashboardServer) Register(mux *http.ServeMux) {
	mux.HandleFunc(withPrefix("dataset"), h.handleDataset)
	mux.HandleFunc(withPrefix("dataset/sample"), h.handleSample)
	mux.HandleFunc(withPrefix("filters"), h.handleFilters)
	mux.HandleFunc(withPrefix("dashboard"), h.handleDashboard)
	mux.HandleFunc(withPrefix("table"), h.handleTable)
	mux.HandleFunc(withPrefix("report"), h.handleReport)
}

// handleDataset принимает загрузку файла набора данных (csv или xlsx).
// При ошибке разбора ранее загруженный набор остается без изменений.
func (h *DashboardServer) handleDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Warn("Failed to parse multipart form", "error", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		err = h.dataset.LoadCSV(file)
	case ".xlsx":
		err = h.dataset.LoadExcel(file)
	default:
		http.Error(w, "Unsupported file type, expected .csv or .xlsx", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.logger.Warn("Dataset load rejected", "file", header.Filename, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]any{"records": h.dataset.Size()})
}

// handleSample загружает синтетический набор данных.
func (h *DashboardServer) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r)
		return
	}

	var rows int
	if raw := r.URL.Query().Get("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid rows parameter", http.StatusBadRequest)
			return
		}
		rows = n
	}

	h.dataset.LoadSample(rows)
	h.writeJSON(w, map[string]any{"records": h.dataset.Size()})
}

type filtersResponse struct {
	Selection analytics.Selection `json:"selection"`
	Options   analytics.Options   `json:"options"`
}

// handleFilters отдает и заменяет текущий выбор фильтров.
func (h *DashboardServer) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		options, err := h.dataset.Options()
		if err != nil {
			http.Error(w, "Dataset is not loaded", http.StatusNotFound)
			return
		}
		h.writeJSON(w, filtersResponse{
			Selection: h.dataset.Selection(),
			Options:   options,
		})
	case http.MethodPut:
		var sel analytics.Selection
		if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
			http.Error(w, "Invalid filter selection", http.StatusBadRequest)
			return
		}
		if err := h.dataset.SetSelection(sel); err != nil {
			http.Error(w, "Dataset is not loaded", http.StatusNotFound)
			return
		}
		h.writeJSON(w, map[string]any{"selection": h.dataset.Selection()})
	default:
		h.methodNotAllowed(w, r)
	}
}

type dashboardResponse struct {
	NoData bool           `json:"no_data"`
	Report *models.Report `json:"report,omitempty"`
}

// handleDashboard отдает KPI и серии по текущим фильтрам.
// Пустая выборка — штатный ответ no_data, а не ошибка.
func (h *DashboardServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r)
		return
	}

	report, err := h.dataset.Report()
	if err != nil {
		if errors.Is(err, analytics.ErrNoData) {
			h.writeJSON(w, dashboardResponse{NoData: true})
			return
		}
		http.Error(w, "Dataset is not loaded", http.StatusNotFound)
		return
	}

	h.writeJSON(w, dashboardResponse{Report: report})
}

type tableResponse struct {
	Total     int               `json:"total"`
	Employees []models.Employee `json:"employees"`
}

// handleTable отдает отфильтрованную таблицу целиком.
func (h *DashboardServer) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r)
		return
	}

	view, err := h.dataset.FilteredView()
	if err != nil {
		http.Error(w, "Dataset is not loaded", http.StatusNotFound)
		return
	}

	if view == nil {
		view = []models.Employee{}
	}
	h.writeJSON(w, tableResponse{Total: len(view), Employees: view})
}

// handleReport обрабатывает запросы на получение Excel-отчёта.
func (h *DashboardServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r)
		return
	}

	wb, err := h.reportServ.Workbook()
	if err != nil {
		if errors.Is(err, analytics.ErrNoData) {
			http.Error(w, "No data matches current filters", http.StatusNotFound)
			return
		}
		if errors.Is(err, services.ErrNoDataset) {
			http.Error(w, "Dataset is not loaded", http.StatusNotFound)
			return
		}
		h.logger.Error("Generate report", "error", err)
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="hr_report.xlsx"`)
	if err := wb.Write(w); err != nil {
		h.logger.Error("Write report response", "error", err)
	}
}

func (h *DashboardServer) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func (h *DashboardServer) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Encode response", "error", err)
	}
}

// Start запускает сервер дашборда.
func (h *DashboardServer) Start(ctx context.Context) error {
	h.logger.Info("Starting dashboard server", "address", h.opts.Address)
	mux := http.NewServeMux()
	h.Register(mux)
	h.srv = &http.Server{
		Addr:         h.opts.Address,
		ReadTimeout:  time.Duration(h.opts.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(h.opts.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(h.opts.IdleTimeoutSeconds) * time.Second,
		Handler:      mux,
	}

	go func() {
		<-ctx.Done()

		h.logger.Info("Shutting down dashboard server (ctx canceled)")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Dashboard server shutdown error", "error", err)
		}
	}()

	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		h.logger.Error("Dashboard server error", "error", err)
		return err
	}

	h.logger.Info("Dashboard server stopped")
	return nil
}

// withPrefix добавляет префикс к пути API.
func withPrefix(postfix string) string {
	return APIv1Prefix + strings.TrimSpace(postfix)
}
