package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DevN0mad/HRDashboard/internal/analytics"
	"github.com/DevN0mad/HRDashboard/internal/models"
)

// ErrNoDataset возвращается, когда набор данных еще не загружен.
var ErrNoDataset = errors.New("dataset is not loaded")

// Колонки входного файла. Сопоставление идет по заголовку,
// без учета регистра, порядок колонок не важен.
const (
	columnEmployeeID        = "employee id"
	columnDepartment        = "department"
	columnAge               = "age"
	columnGender            = "gender"
	columnAttrition         = "attrition"
	columnSalary            = "salary"
	columnYearsAtCompany    = "years at company"
	columnPerformanceRating = "performance rating"
	columnHiringDate        = "hiring date"
)

var requiredColumns = []string{
	columnEmployeeID,
	columnDepartment,
	columnAge,
	columnGender,
	columnAttrition,
	columnSalary,
	columnYearsAtCompany,
	columnPerformanceRating,
	columnHiringDate,
}

// Форматы, в которых распознается дата найма. Нераспознанное
// значение дает запись без даты, а не ошибку загрузки.
var hiringDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
}

// DatasetOpts параметры сервиса набора данных.
type DatasetOpts struct {
	SampleSize    int  `mapstructure:"sample_size" yaml:"sample_size" validate:"min=0"`
	PreloadSample bool `mapstructure:"preload_sample" yaml:"preload_sample"`
}

// DatasetService хранит состояние сессии: ровно один набор записей
// и текущий выбор фильтров. Загрузка нового источника целиком
// заменяет набор и сбрасывает фильтры.
type DatasetService struct {
	opts   DatasetOpts
	logger *slog.Logger

	mu        sync.RWMutex
	records   []models.Employee
	selection analytics.Selection
	loaded    bool
	source    string
}

// NewDatasetService создает сервис набора данных.
func NewDatasetService(opts DatasetOpts, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		opts:   opts,
		logger: logger,
	}
}

// LoadCSV загружает набор данных из CSV. При любой ошибке разбора
// загрузка прерывается, ранее загруженный набор остается без изменений.
func (s *DatasetService) LoadCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		s.logger.Error("Failed to read CSV", "error", err)
		return fmt.Errorf("ошибка чтения CSV: %w", err)
	}

	records, err := decodeEmployees(rows)
	if err != nil {
		s.logger.Error("Failed to decode CSV dataset", "error", err)
		return err
	}

	s.install(records, "csv")
	return nil
}

// LoadExcel загружает набор данных из xlsx (первый лист книги).
// Контракт тот же, что у LoadCSV.
func (s *DatasetService) LoadExcel(r io.Reader) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		s.logger.Error("Failed to open xlsx", "error", err)
		return fmt.Errorf("ошибка открытия xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return fmt.Errorf("ошибка чтения xlsx: книга не содержит листов")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		s.logger.Error("Failed to read xlsx rows", "sheet", sheet, "error", err)
		return fmt.Errorf("ошибка чтения листа %q: %w", sheet, err)
	}

	records, err := decodeEmployees(rows)
	if err != nil {
		s.logger.Error("Failed to decode xlsx dataset", "sheet", sheet, "error", err)
		return err
	}

	s.install(records, "xlsx")
	return nil
}

// LoadSample генерирует синтетический набор данных и делает его текущим.
// При n <= 0 берется размер из конфигурации либо значение по умолчанию.
func (s *DatasetService) LoadSample(n int) {
	if n <= 0 {
		n = s.opts.SampleSize
	}
	if n <= 0 {
		n = defaultSampleSize
	}
	s.install(generateSampleData(n), "sample")
}

// install целиком заменяет набор данных и сбрасывает фильтры.
func (s *DatasetService) install(records []models.Employee, source string) {
	s.mu.Lock()
	s.records = records
	s.selection = analytics.NewSelection(records)
	s.loaded = true
	s.source = source
	s.mu.Unlock()

	s.logger.Info("Dataset installed", "source", source, "records", len(records))
}

// Loaded сообщает, загружен ли набор данных.
func (s *DatasetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Size возвращает число записей в текущем наборе данных.
func (s *DatasetService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Selection возвращает текущий выбор фильтров.
func (s *DatasetService) Selection() analytics.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySelection(s.selection)
}

// SetSelection заменяет выбор фильтров целиком.
func (s *DatasetService) SetSelection(sel analytics.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNoDataset
	}
	s.selection = copySelection(sel)
	s.logger.Info("Filter selection updated",
		"departments", len(sel.Departments),
		"gender", sel.Gender,
		"attrition", sel.Attrition)
	return nil
}

// Options возвращает значения фильтров, присутствующие в наборе данных.
func (s *DatasetService) Options() (analytics.Options, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return analytics.Options{}, ErrNoDataset
	}
	return analytics.CollectOptions(s.records), nil
}

// FilteredView возвращает записи, удовлетворяющие текущим фильтрам,
// в исходном порядке. Пустая выборка — корректное состояние.
func (s *DatasetService) FilteredView() ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNoDataset
	}
	return analytics.Apply(s.records, s.selection), nil
}

// Report строит отчет по текущей выборке. Возвращает
// analytics.ErrNoData, если фильтрам не соответствует ни одна запись.
func (s *DatasetService) Report() (*models.Report, error) {
	view, err := s.FilteredView()
	if err != nil {
		return nil, err
	}
	return analytics.Summarize(view)
}

func copySelection(sel analytics.Selection) analytics.Selection {
	out := sel
	out.Departments = append([]string(nil), sel.Departments...)
	return out
}

// decodeEmployees разбирает строки таблицы (первая строка — заголовок)
// в записи о сотрудниках. Любая нечисловая ячейка числовой колонки —
// ошибка всего файла; нераспознанная дата найма — нет.
func decodeEmployees(rows [][]string) ([]models.Employee, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("пустой файл: нет строки заголовка")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("в файле нет колонки %q", col)
		}
	}

	records := make([]models.Employee, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id, err := strconv.Atoi(cell(columnEmployeeID))
		if err != nil {
			return nil, fmt.Errorf("строка %d: некорректный Employee ID %q", rowNum+2, cell(columnEmployeeID))
		}
		age, err := strconv.Atoi(cell(columnAge))
		if err != nil {
			return nil, fmt.Errorf("строка %d: некорректный Age %q", rowNum+2, cell(columnAge))
		}
		salary, err := strconv.ParseFloat(cell(columnSalary), 64)
		if err != nil {
			return nil, fmt.Errorf("строка %d: некорректная Salary %q", rowNum+2, cell(columnSalary))
		}
		years, err := strconv.Atoi(cell(columnYearsAtCompany))
		if err != nil {
			return nil, fmt.Errorf("строка %d: некорректные Years at Company %q", rowNum+2, cell(columnYearsAtCompany))
		}
		rating, err := strconv.Atoi(cell(columnPerformanceRating))
		if err != nil {
			return nil, fmt.Errorf("строка %d: некорректный Performance Rating %q", rowNum+2, cell(columnPerformanceRating))
		}

		records = append(records, models.Employee{
			EmployeeID:        id,
			Department:        cell(columnDepartment),
			Age:               age,
			Gender:            cell(columnGender),
			Attrition:         cell(columnAttrition),
			Salary:            salary,
			YearsAtCompany:    years,
			PerformanceRating: rating,
			HiringDate:        parseHiringDate(cell(columnHiringDate)),
		})
	}

	return records, nil
}

// parseHiringDate разбирает дату найма. Возвращает nil для пустых
// и нераспознанных значений — дата никогда не придумывается.
func parseHiringDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range hiringDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
