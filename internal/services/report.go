package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/DevN0mad/HRDashboard/internal/models"
)

const reportFileName = "hr_report.xlsx"

// Имена листов итоговой книги.
const (
	sheetKPI         = "Показатели"
	sheetDepartments = "Отделы"
	sheetHiring      = "Наймы"
	sheetEmployees   = "Сотрудники"
)

// ReportOpts параметры сервиса выгрузки отчета.
type ReportOpts struct {
	SaveDir string `mapstructure:"save_dir" yaml:"save_dir" validate:"required"`
}

// ReportService строит Excel-отчет по текущей выборке сессии.
type ReportService struct {
	opts    ReportOpts
	logger  *slog.Logger
	dataset *DatasetService
}

// NewReportService создает сервис выгрузки отчета.
func NewReportService(dataset *DatasetService, opts ReportOpts, logger *slog.Logger) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dataset == nil {
		return nil, fmt.Errorf("dataset service is required")
	}
	return &ReportService{
		opts:    opts,
		logger:  logger,
		dataset: dataset,
	}, nil
}

// Workbook строит книгу с четырьмя листами по текущей выборке.
// Возвращает analytics.ErrNoData при пустой выборке.
func (s *ReportService) Workbook() (*excelize.File, error) {
	report, err := s.dataset.Report()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения отчета: %w", err)
	}

	view, err := s.dataset.FilteredView()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения выборки: %w", err)
	}

	s.logger.Info("Building Excel workbook",
		"employees", report.TotalEmployees,
		"departments", len(report.DepartmentDistribution))

	f := excelize.NewFile()

	kpiIndex, err := f.NewSheet(sheetKPI)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания листа %q: %w", sheetKPI, err)
	}
	fillKPISheet(f, report)

	if _, err := f.NewSheet(sheetDepartments); err != nil {
		return nil, fmt.Errorf("ошибка создания листа %q: %w", sheetDepartments, err)
	}
	fillDepartmentSheet(f, report)

	if _, err := f.NewSheet(sheetHiring); err != nil {
		return nil, fmt.Errorf("ошибка создания листа %q: %w", sheetHiring, err)
	}
	fillHiringSheet(f, report)

	if _, err := f.NewSheet(sheetEmployees); err != nil {
		return nil, fmt.Errorf("ошибка создания листа %q: %w", sheetEmployees, err)
	}
	fillEmployeeSheet(f, view)

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(kpiIndex)

	return f, nil
}

// GenerateExcelReport строит книгу и сохраняет ее в каталоге выгрузки.
// Возвращает путь к сохраненному файлу.
func (s *ReportService) GenerateExcelReport() (string, error) {
	f, err := s.Workbook()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.opts.SaveDir, 0o755); err != nil {
		s.logger.Error("Failed to create report dir", "dir", s.opts.SaveDir, "error", err)
		return "", fmt.Errorf("ошибка создания каталога %q: %w", s.opts.SaveDir, err)
	}

	path := filepath.Join(s.opts.SaveDir, reportFileName)
	s.logger.Info("Saving Excel report", "path", path)
	if err := f.SaveAs(path); err != nil {
		s.logger.Error("Failed to save Excel report", "path", path, "error", err)
		return "", fmt.Errorf("ошибка сохранения отчета: %w", err)
	}

	return path, nil
}

// fillKPISheet лист с четырьмя KPI. Округление до двух знаков
// происходит только здесь, при отображении.
func fillKPISheet(f *excelize.File, report *models.Report) {
	rows := [][]any{
		{"Показатель", "Значение"},
		{"Всего сотрудников", report.TotalEmployees},
		{"Текучесть, %", fmt.Sprintf("%.2f", report.AttritionRate)},
		{"Средняя зарплата", fmt.Sprintf("%.2f", report.AverageSalary)},
		{"Средний стаж, лет", fmt.Sprintf("%.2f", report.AverageTenure)},
	}
	writeRows(f, sheetKPI, rows)
	setColumnWidths(f, sheetKPI, 2, 25)
}

// fillDepartmentSheet сводка по отделам: численность, увольнения
// и пятичисловая сводка зарплат.
func fillDepartmentSheet(f *excelize.File, report *models.Report) {
	attrited := make(map[string]float64, len(report.AttritionByDepartment))
	for _, p := range report.AttritionByDepartment {
		attrited[p.Label] = p.Value
	}
	boxes := make(map[string]models.SalaryBox, len(report.SalaryByDepartment))
	for _, b := range report.SalaryByDepartment {
		boxes[b.Department] = b
	}

	rows := [][]any{{
		"Отдел", "Сотрудников", "Уволившихся",
		"Мин. зарплата", "Q1", "Медиана", "Q3", "Макс. зарплата",
	}}
	for _, p := range report.DepartmentDistribution {
		box := boxes[p.Label]
		rows = append(rows, []any{
			p.Label, int(p.Value), int(attrited[p.Label]),
			box.Min, box.Q1, box.Median, box.Q3, box.Max,
		})
	}
	writeRows(f, sheetDepartments, rows)
	setColumnWidths(f, sheetDepartments, 8, 18)
}

// fillHiringSheet помесячная динамика наймов.
func fillHiringSheet(f *excelize.File, report *models.Report) {
	rows := [][]any{{"Месяц", "Наймов"}}
	for _, p := range report.HiringTrend {
		rows = append(rows, []any{p.Label, int(p.Value)})
	}
	writeRows(f, sheetHiring, rows)
	setColumnWidths(f, sheetHiring, 2, 15)
}

// fillEmployeeSheet отфильтрованная таблица целиком, в исходном порядке.
func fillEmployeeSheet(f *excelize.File, view []models.Employee) {
	rows := [][]any{{
		"ID", "Отдел", "Возраст", "Пол", "Увольнение",
		"Зарплата", "Стаж", "Оценка", "Дата найма",
	}}
	for _, e := range view {
		hired := ""
		if e.HiringDate != nil {
			hired = e.HiringDate.Format("02.01.2006")
		}
		rows = append(rows, []any{
			e.EmployeeID, e.Department, e.Age, e.Gender, e.Attrition,
			e.Salary, e.YearsAtCompany, e.PerformanceRating, hired,
		})
	}
	writeRows(f, sheetEmployees, rows)
	setColumnWidths(f, sheetEmployees, 9, 16)
}

// writeRows записывает строки на лист начиная с A1.
func writeRows(f *excelize.File, sheet string, rows [][]any) {
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue(sheet, cell, value)
		}
	}
}

// setColumnWidths выставляет одинаковую ширину первым n колонкам листа.
func setColumnWidths(f *excelize.File, sheet string, n int, width float64) {
	for i := 0; i < n; i++ {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, width)
	}
}

// digestCaption короткая сводка KPI для подписи к файлу в рассылке.
func digestCaption(report *models.Report) string {
	return fmt.Sprintf(
		"HR-отчет: сотрудников %d, текучесть %.2f%%, средняя зарплата %.2f, средний стаж %.2f лет",
		report.TotalEmployees,
		report.AttritionRate,
		report.AverageSalary,
		report.AverageTenure,
	)
}
