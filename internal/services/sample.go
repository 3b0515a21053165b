package services

import (
	"math/rand"
	"time"

	"github.com/DevN0mad/HRDashboard/internal/analytics"
	"github.com/DevN0mad/HRDashboard/internal/models"
)

const (
	defaultSampleSize = 200

	// Доля уволившихся в синтетических данных.
	sampleAttritionProbability = 0.15

	// Фиксированное зерно: один и тот же размер дает один и тот же набор.
	sampleSeed = 42
)

var (
	sampleDepartments = []string{"Sales", "Marketing", "Engineering", "Human Resources", "Finance"}
	sampleGenders     = []string{"Male", "Female"}
)

// generateSampleData генерирует n синтетических записей о сотрудниках:
// возраст 22–59, зарплата 40000–149999, стаж 1–14 лет, оценка 1–4,
// дата найма — случайный день в пятилетке с 2020-01-01.
func generateSampleData(n int) []models.Employee {
	rng := rand.New(rand.NewSource(sampleSeed))
	hiringBase := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	records := make([]models.Employee, 0, n)
	for i := 0; i < n; i++ {
		attrition := analytics.AttritionNo
		if rng.Float64() < sampleAttritionProbability {
			attrition = analytics.AttritionYes
		}

		hired := hiringBase.AddDate(0, 0, rng.Intn(1825))

		records = append(records, models.Employee{
			EmployeeID:        i + 1,
			Department:        sampleDepartments[rng.Intn(len(sampleDepartments))],
			Age:               22 + rng.Intn(38),
			Gender:            sampleGenders[rng.Intn(len(sampleGenders))],
			Attrition:         attrition,
			Salary:            float64(40000 + rng.Intn(110000)),
			YearsAtCompany:    1 + rng.Intn(14),
			PerformanceRating: 1 + rng.Intn(4),
			HiringDate:        &hired,
		})
	}
	return records
}
