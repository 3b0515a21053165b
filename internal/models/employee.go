package models

import "time"

// Employee представляет одну запись о сотруднике в загруженном наборе данных.
type Employee struct {
	EmployeeID        int     `json:"employee_id"`
	Department        string  `json:"department"`
	Age               int     `json:"age"`
	Gender            string  `json:"gender"`
	Attrition         string  `json:"attrition"`
	Salary            float64 `json:"salary"`
	YearsAtCompany    int     `json:"years_at_company"`
	PerformanceRating int     `json:"performance_rating"`

	// HiringDate равен nil, если дата в исходном файле отсутствует
	// или не распозналась. Такие записи исключаются только из
	// помесячной статистики найма.
	HiringDate *time.Time `json:"hiring_date,omitempty"`
}

// HasHiringDate сообщает, известна ли дата найма сотрудника.
func (e Employee) HasHiringDate() bool {
	return e.HiringDate != nil
}

// HiringMonth возвращает месяц найма в формате "2006-01".
// Пустая строка, если дата найма неизвестна.
func (e Employee) HiringMonth() string {
	if e.HiringDate == nil {
		return ""
	}
	return e.HiringDate.Format("2006-01")
}
