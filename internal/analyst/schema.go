package analyst

import (
	"fmt"
	"strings"
)

// hr_data is the single external table the analyst queries. The schema is a
// static description embedded in the prompt, never derived at runtime.

type column struct {
	name string
	desc string
}

var schema = []column{
	// temporal
	{"report_date", "DATE — дата формирования отчёта. Не использовать для анализа трендов, так как доступно всего несколько дат (например, только за 3 месяца). Это дата выгрузки, а не события."},
	{"fire_from_company", "DATE — реальная дата увольнения сотрудника. Значение 1970-01-01 означает, что сотрудник всё ещё работает. Используется для анализа увольнений по времени, только если дата больше 1971 года"},
	{"hire_to_company", "DATE — реальная дата выхода сотрудника в компанию. Используется для анализа количества наймов по времени."},
	{"real_day", "INT — число дней в отчётном месяце"},

	// numeric measures
	{"hirecount", "INT — (0/1) — флаг (1, если сотрудник был принят в компанию в текущем `report_date`). Не использовать для агрегации по времени. Подходит только для отчётов, связанных с конкретным `report_date`."},
	{"firecount", "INT — (0/1) — флаг (1, если сотрудник был уволен в рамках `report_date`). Аналогично, не подходит для временных рядов."},
	{"fte", "NUMERIC — ставка (0.2, 0.5, 1.0 и т.д.)"},
	{"experience", "NUMERIC — стаж сотрудника, исчисляемый в месяцах"},
	{"fullyears", "INT — Возраст сотрудника в полных годах."},

	// categorical
	{"service", "TEXT — Сервис или подразделение, к которому относится сотрудник."},
	{"cluster", "TEXT — кластер"},
	{"location_name", "TEXT — локация"},
	{"sex", "TEXT — пол сотрудника, значения M (мужчина) и F (женщина)"},
	{"age_category", "TEXT — Категориальный диапазон по возрасту"},
	{"experience_category", "TEXT — Категориальный диапазон по стажу"},
	{"department_3", "TEXT — Название департамента третьего уровня."},
	{"department_4", "TEXT — Название департамента четвёртого уровня."},
	{"department_5", "TEXT — Название департамента пятого уровня."},
	{"department_6", "TEXT — Название департамента шестого уровня."},
}

// Column groupings used in both the SQL prompt and the chart-directive prompt.
var (
	CategoricalColumns = []string{
		"service", "cluster", "location_name", "sex",
		"age_category", "experience_category",
		"department_3", "department_4", "department_5", "department_6",
	}
	NumericColumns  = []string{"hirecount", "firecount", "fte", "experience", "fullyears"}
	TemporalColumns = []string{"report_date", "fire_from_company", "hire_to_company", "real_day"}
)

func schemaText() string {
	lines := make([]string, 0, len(schema))
	for _, c := range schema {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.name, c.desc))
	}
	return strings.Join(lines, "\n")
}
