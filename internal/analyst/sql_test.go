package analyst

import (
	"strings"
	"testing"
	"time"
)

func TestValidateSQL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		sql  string
		want bool
	}{
		{"plain select", "SELECT * FROM hr_data", true},
		{"lowercase select", "select firecount", true},
		{"leading whitespace", "  \n select service from hr_data", true},
		{"stacked drop", "SELECT * FROM hr_data; DROP TABLE x", false},
		{"delete", "DELETE FROM hr_data", false},
		{"update keyword anywhere", "SELECT updated_at FROM hr_data", false},
		{"insert", "INSERT INTO hr_data VALUES (1)", false},
		{"alter", "SELECT 1; ALTER TABLE hr_data ADD COLUMN x INT", false},
		{"not a select", "WITH t AS (SELECT 1) SELECT * FROM t", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateSQL(tc.sql); got != tc.want {
				t.Errorf("ValidateSQL(%q) = %v, want %v", tc.sql, got, tc.want)
			}
		})
	}
}

func TestExtractSQLFencedBlock(t *testing.T) {
	t.Parallel()

	reply := "Вот запрос:\n```sql\nSELECT a FROM b```"
	if got := ExtractSQL(reply); got != "SELECT a FROM b" {
		t.Errorf("ExtractSQL = %q, want %q", got, "SELECT a FROM b")
	}
}

func TestExtractSQLFencedBlockWithoutLanguage(t *testing.T) {
	t.Parallel()

	reply := "```\nselect service, count(*) as cnt\nfrom hr_data\ngroup by service```"
	got := ExtractSQL(reply)
	if !strings.HasPrefix(strings.ToUpper(got), "SELECT") {
		t.Errorf("ExtractSQL = %q, want a SELECT statement", got)
	}
	if !strings.Contains(got, "group by service") {
		t.Errorf("ExtractSQL = %q, lost part of the statement", got)
	}
}

func TestExtractSQLBareStatement(t *testing.T) {
	t.Parallel()

	reply := "SELECT department_3, COUNT(*) AS fires\nFROM hr_data\nGROUP BY department_3;"
	got := ExtractSQL(reply)
	if !strings.HasPrefix(got, "SELECT department_3") {
		t.Errorf("ExtractSQL = %q, want bare SELECT", got)
	}
	if strings.HasSuffix(got, ";") {
		t.Errorf("ExtractSQL = %q, trailing semicolon should be stripped", got)
	}
}

func TestExtractSQLNoMatch(t *testing.T) {
	t.Parallel()

	reply := "За какой год нужна статистика?"
	if got := ExtractSQL(reply); got != "" {
		t.Errorf("ExtractSQL = %q, want empty for a clarifying question", got)
	}
}

func TestMakeFilename(t *testing.T) {
	t.Parallel()

	today := time.Now().Format("2006-01-02")

	cases := []struct {
		message string
		prefix  string
	}{
		{"покажи увольнения по департаментам", "fires"},
		{"Найм за 2024 год", "hires"},
		{"статистика по сервисам", "stats"},
		{"построй график", "chart"},
		{"сколько сотрудников всего", "analytics"},
	}

	for _, tc := range cases {
		want := tc.prefix + "_" + today + ".csv"
		if got := MakeFilename(tc.message); got != want {
			t.Errorf("MakeFilename(%q) = %q, want %q", tc.message, got, want)
		}
	}
}
