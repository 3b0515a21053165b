package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/DevN0mad/HRDashboard/internal/services"
)

func main() {
	rows := flag.Int("rows", 200, "Размер синтетического набора данных")
	saveDir := flag.String("out", ".", "Каталог для сохранения отчета")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dataset := services.NewDatasetService(services.DatasetOpts{SampleSize: *rows}, logger)
	dataset.LoadSample(*rows)

	report, err := dataset.Report()
	if err != nil {
		logger.Error("Failed to build report", "error", err)
		return
	}

	logger.Info("KPIs computed",
		"total_employees", report.TotalEmployees,
		"attrition_rate", fmt.Sprintf("%.2f%%", report.AttritionRate),
		"average_salary", fmt.Sprintf("%.2f", report.AverageSalary),
		"average_tenure", fmt.Sprintf("%.2f", report.AverageTenure),
	)

	reportServ, err := services.NewReportService(dataset, services.ReportOpts{SaveDir: *saveDir}, logger)
	if err != nil {
		logger.Error("Failed to init report service", "error", err)
		return
	}

	path, err := reportServ.GenerateExcelReport()
	if err != nil {
		logger.Error("Failed to generate report", "error", err)
		return
	}

	logger.Info("✅ Excel report successfully created", "file", path)
}
