package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/HRDashboard/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// tenRecords: 3 в Sales (из них 2 уволились), 7 в Engineering (увольнений нет).
func tenRecords() []models.Employee {
	records := []models.Employee{
		{EmployeeID: 1, Department: "Sales", Attrition: AttritionYes, Salary: 50000, YearsAtCompany: 2, HiringDate: date(2021, time.March, 1)},
		{EmployeeID: 2, Department: "Sales", Attrition: AttritionYes, Salary: 60000, YearsAtCompany: 4, HiringDate: date(2021, time.March, 15)},
		{EmployeeID: 3, Department: "Sales", Attrition: AttritionNo, Salary: 70000, YearsAtCompany: 6, HiringDate: date(2020, time.January, 10)},
	}
	for i := 4; i <= 10; i++ {
		records = append(records, models.Employee{
			EmployeeID:     i,
			Department:     "Engineering",
			Attrition:      AttritionNo,
			Salary:         80000,
			YearsAtCompany: 5,
			HiringDate:     date(2022, time.July, i),
		})
	}
	return records
}

func TestSummarizeEmptyViewReturnsErrNoData(t *testing.T) {
	report, err := Summarize(nil)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSummarizeKPIs(t *testing.T) {
	report, err := Summarize(tenRecords())
	require.NoError(t, err)

	assert.Equal(t, 10, report.TotalEmployees)
	assert.InDelta(t, 20.0, report.AttritionRate, 1e-9)
	assert.InDelta(t, (50000+60000+70000+7*80000)/10.0, report.AverageSalary, 1e-9)
	assert.InDelta(t, (2+4+6+7*5)/10.0, report.AverageTenure, 1e-9)
}

func TestSummarizeSalesSubset(t *testing.T) {
	sel := Selection{Departments: []string{"Sales"}, Gender: All, Attrition: All}
	view := Apply(tenRecords(), sel)

	report, err := Summarize(view)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalEmployees)
	assert.InDelta(t, 200.0/3.0, report.AttritionRate, 1e-9)
	// округление до 66.67% происходит только при отображении

	require.Len(t, report.AttritionByDepartment, 1)
	assert.Equal(t, "Sales", report.AttritionByDepartment[0].Label)
	assert.Equal(t, 2.0, report.AttritionByDepartment[0].Value)
}

func TestDepartmentDistributionSumsToTotal(t *testing.T) {
	report, err := Summarize(tenRecords())
	require.NoError(t, err)

	require.Len(t, report.DepartmentDistribution, 2)
	// по убыванию численности
	assert.Equal(t, "Engineering", report.DepartmentDistribution[0].Label)
	assert.Equal(t, 7.0, report.DepartmentDistribution[0].Value)
	assert.Equal(t, "Sales", report.DepartmentDistribution[1].Label)

	var sum float64
	for _, p := range report.DepartmentDistribution {
		sum += p.Value
	}
	assert.Equal(t, float64(report.TotalEmployees), sum)
}

func TestDepartmentDistributionTieBreaksByFirstSeen(t *testing.T) {
	records := []models.Employee{
		{EmployeeID: 1, Department: "Finance", Attrition: AttritionNo},
		{EmployeeID: 2, Department: "Marketing", Attrition: AttritionNo},
		{EmployeeID: 3, Department: "Finance", Attrition: AttritionNo},
		{EmployeeID: 4, Department: "Marketing", Attrition: AttritionNo},
	}

	report, err := Summarize(records)
	require.NoError(t, err)

	assert.Equal(t, "Finance", report.DepartmentDistribution[0].Label)
	assert.Equal(t, "Marketing", report.DepartmentDistribution[1].Label)
}

func TestAttritionZeroDepartmentsOmitted(t *testing.T) {
	report, err := Summarize(tenRecords())
	require.NoError(t, err)

	require.Len(t, report.AttritionByDepartment, 1)
	assert.Equal(t, "Sales", report.AttritionByDepartment[0].Label)
}

func TestHiringTrendSortedAndSkipsMissingDates(t *testing.T) {
	records := tenRecords()
	// запись без даты найма: входит в KPI, но не в динамику наймов
	records = append(records, models.Employee{
		EmployeeID: 11, Department: "Sales", Attrition: AttritionNo, Salary: 90000,
	})

	report, err := Summarize(records)
	require.NoError(t, err)

	assert.Equal(t, 11, report.TotalEmployees)

	require.Len(t, report.HiringTrend, 3)
	assert.Equal(t, "2020-01", report.HiringTrend[0].Label)
	assert.Equal(t, "2021-03", report.HiringTrend[1].Label)
	assert.Equal(t, "2022-07", report.HiringTrend[2].Label)
	assert.Equal(t, 2.0, report.HiringTrend[1].Value)

	var hired float64
	for _, p := range report.HiringTrend {
		hired += p.Value
	}
	missing := 1.0
	assert.Equal(t, float64(report.TotalEmployees), hired+missing)
}

func TestSalaryByDepartmentFiveNumberSummary(t *testing.T) {
	records := []models.Employee{
		{EmployeeID: 1, Department: "Sales", Attrition: AttritionNo, Salary: 40},
		{EmployeeID: 2, Department: "Sales", Attrition: AttritionNo, Salary: 10},
		{EmployeeID: 3, Department: "Sales", Attrition: AttritionNo, Salary: 30},
		{EmployeeID: 4, Department: "Sales", Attrition: AttritionNo, Salary: 20},
		{EmployeeID: 5, Department: "Finance", Attrition: AttritionNo, Salary: 100},
	}

	report, err := Summarize(records)
	require.NoError(t, err)

	require.Len(t, report.SalaryByDepartment, 2)

	sales := report.SalaryByDepartment[0]
	assert.Equal(t, "Sales", sales.Department)
	assert.InDelta(t, 10, sales.Min, 1e-9)
	assert.InDelta(t, 17.5, sales.Q1, 1e-9)
	assert.InDelta(t, 25, sales.Median, 1e-9)
	assert.InDelta(t, 32.5, sales.Q3, 1e-9)
	assert.InDelta(t, 40, sales.Max, 1e-9)

	// отдел с единственной зарплатой: все пять чисел совпадают
	finance := report.SalaryByDepartment[1]
	assert.Equal(t, "Finance", finance.Department)
	assert.Equal(t, finance.Min, finance.Max)
	assert.Equal(t, finance.Min, finance.Median)
}
