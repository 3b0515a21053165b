package analytics

import (
	"errors"
	"sort"

	"github.com/DevN0mad/HRDashboard/internal/models"
)

// ErrNoData возвращается при попытке построить отчет по пустой выборке.
// Вызывающая сторона обязана показать состояние "нет данных",
// а не считать это ошибкой вычисления.
var ErrNoData = errors.New("no records match the current filters")

// Summarize строит отчет по отфильтрованной выборке: четыре KPI
// и серии для графиков. Выборка не изменяется; отчет каждый раз
// пересчитывается с нуля.
func Summarize(view []models.Employee) (*models.Report, error) {
	if len(view) == 0 {
		return nil, ErrNoData
	}

	total := len(view)
	var attrited int
	var salarySum, tenureSum float64
	for _, e := range view {
		if e.Attrition == AttritionYes {
			attrited++
		}
		salarySum += e.Salary
		tenureSum += float64(e.YearsAtCompany)
	}

	return &models.Report{
		TotalEmployees:         total,
		AttritionRate:          float64(attrited) / float64(total) * 100,
		AverageSalary:          salarySum / float64(total),
		AverageTenure:          tenureSum / float64(total),
		DepartmentDistribution: departmentDistribution(view),
		HiringTrend:            hiringTrend(view),
		AttritionByDepartment:  attritionByDepartment(view),
		SalaryByDepartment:     salaryByDepartment(view),
	}, nil
}

// departmentDistribution число сотрудников по отделам,
// по убыванию, при равенстве — в порядке первого появления.
func departmentDistribution(view []models.Employee) []models.ChartPoint {
	return countByDepartment(view, func(models.Employee) bool { return true })
}

// attritionByDepartment число уволившихся по отделам.
// Отделы без увольнений в серию не попадают.
func attritionByDepartment(view []models.Employee) []models.ChartPoint {
	return countByDepartment(view, func(e models.Employee) bool {
		return e.Attrition == AttritionYes
	})
}

func countByDepartment(view []models.Employee, include func(models.Employee) bool) []models.ChartPoint {
	counts := make(map[string]int)
	var order []string
	for _, e := range view {
		if !include(e) {
			continue
		}
		if _, ok := counts[e.Department]; !ok {
			order = append(order, e.Department)
		}
		counts[e.Department]++
	}

	points := make([]models.ChartPoint, 0, len(order))
	for _, dept := range order {
		points = append(points, models.ChartPoint{Label: dept, Value: float64(counts[dept])})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	return points
}

// hiringTrend число наймов по календарным месяцам ("2006-01"),
// по возрастанию месяца. Записи без даты найма не учитываются.
func hiringTrend(view []models.Employee) []models.ChartPoint {
	counts := make(map[string]int)
	for _, e := range view {
		month := e.HiringMonth()
		if month == "" {
			continue
		}
		counts[month]++
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	// Лексикографический порядок "ГГГГ-ММ" совпадает с хронологическим.
	sort.Strings(months)

	points := make([]models.ChartPoint, 0, len(months))
	for _, m := range months {
		points = append(points, models.ChartPoint{Label: m, Value: float64(counts[m])})
	}
	return points
}

// salaryByDepartment пятичисловая сводка зарплат по каждому отделу,
// отделы в порядке первого появления в выборке.
func salaryByDepartment(view []models.Employee) []models.SalaryBox {
	salaries := make(map[string][]float64)
	var order []string
	for _, e := range view {
		if _, ok := salaries[e.Department]; !ok {
			order = append(order, e.Department)
		}
		salaries[e.Department] = append(salaries[e.Department], e.Salary)
	}

	boxes := make([]models.SalaryBox, 0, len(order))
	for _, dept := range order {
		values := salaries[dept]
		sort.Float64s(values)
		boxes = append(boxes, models.SalaryBox{
			Department: dept,
			Min:        values[0],
			Q1:         quantile(values, 0.25),
			Median:     quantile(values, 0.5),
			Q3:         quantile(values, 0.75),
			Max:        values[len(values)-1],
		})
	}
	return boxes
}

// quantile квантиль отсортированного среза с линейной интерполяцией.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
