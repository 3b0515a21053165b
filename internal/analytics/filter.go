package analytics

import (
	"github.com/DevN0mad/HRDashboard/internal/models"
)

// All сентинел для одиночных фильтров: ограничение не задано.
const All = "All"

// Значения поля Attrition в наборе данных.
const (
	AttritionYes = "Yes"
	AttritionNo  = "No"
)

// Selection пользовательский выбор фильтров для текущей сессии.
// Departments — подмножество отделов (пустой список означает пустой
// результат, а не "все отделы"), Gender и Attrition — либо конкретное
// значение, либо All.
type Selection struct {
	Departments []string `json:"departments"`
	Gender      string   `json:"gender"`
	Attrition   string   `json:"attrition"`
}

// NewSelection создает выбор "без ограничений" для набора данных:
// все присутствующие отделы, пол и статус увольнения не ограничены.
func NewSelection(records []models.Employee) Selection {
	return Selection{
		Departments: Departments(records),
		Gender:      All,
		Attrition:   All,
	}
}

// Options доступные значения фильтров, присутствующие в наборе данных.
type Options struct {
	Departments []string `json:"departments"`
	Genders     []string `json:"genders"`
	Attritions  []string `json:"attritions"`
}

// CollectOptions собирает уникальные значения фильтруемых полей
// в порядке первого появления.
func CollectOptions(records []models.Employee) Options {
	return Options{
		Departments: Departments(records),
		Genders:     distinct(records, func(e models.Employee) string { return e.Gender }),
		Attritions:  distinct(records, func(e models.Employee) string { return e.Attrition }),
	}
}

// Departments возвращает уникальные отделы в порядке первого появления.
func Departments(records []models.Employee) []string {
	return distinct(records, func(e models.Employee) string { return e.Department })
}

func distinct(records []models.Employee, key func(models.Employee) string) []string {
	seen := make(map[string]bool, len(records))
	var values []string
	for _, e := range records {
		v := key(e)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

// Apply возвращает записи, удовлетворяющие всем условиям выбора:
// отдел входит в выбранное подмножество, пол и статус увольнения
// совпадают либо не ограничены. Порядок записей сохраняется,
// исходный срез не изменяется.
func Apply(records []models.Employee, sel Selection) []models.Employee {
	deptSet := make(map[string]bool, len(sel.Departments))
	for _, d := range sel.Departments {
		deptSet[d] = true
	}

	filtered := make([]models.Employee, 0, len(records))
	for _, e := range records {
		if !deptSet[e.Department] {
			continue
		}
		if !matches(sel.Gender, e.Gender) {
			continue
		}
		if !matches(sel.Attrition, e.Attrition) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// matches проверяет одиночный фильтр: пустое значение и All
// означают отсутствие ограничения.
func matches(selected, value string) bool {
	return selected == "" || selected == All || selected == value
}
