package models

// ChartPoint одна точка серии для графика: подпись и числовое значение.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SalaryBox пятичисловая сводка зарплат по отделу (для box plot).
type SalaryBox struct {
	Department string  `json:"department"`
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
}

// Report итоговый отчет по отфильтрованному набору данных:
// четыре KPI и серии, готовые к отрисовке.
type Report struct {
	TotalEmployees int     `json:"total_employees"`
	AttritionRate  float64 `json:"attrition_rate"` // проценты, без округления
	AverageSalary  float64 `json:"average_salary"`
	AverageTenure  float64 `json:"average_tenure"`

	DepartmentDistribution []ChartPoint `json:"department_distribution"`
	HiringTrend            []ChartPoint `json:"hiring_trend"`
	AttritionByDepartment  []ChartPoint `json:"attrition_by_department"`
	SalaryByDepartment     []SalaryBox  `json:"salary_by_department"`
}
