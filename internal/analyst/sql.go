package analyst

import (
	"regexp"
	"strings"
	"time"
)

var (
	// Fenced ```sql blocks first, then a bare trailing SELECT. Both
	// case-insensitive and spanning newlines; the model's prose is not
	// contract-guaranteed, so this is parse-or-treat-as-clarification.
	fencedSQLRe = regexp.MustCompile("(?is)```(?:sql)?\\s*(SELECT .*?)```")
	bareSQLRe   = regexp.MustCompile(`(?is)(SELECT .*?);?$`)

	forbiddenKeywords = []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER"}
)

// ExtractSQL pulls a candidate SQL statement out of a model reply. It returns
// "" when no SELECT is found, in which case the reply is a clarification.
func ExtractSQL(text string) string {
	if m := fencedSQLRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareSQLRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ValidateSQL accepts a statement iff, after trimming and upper-casing, it
// starts with SELECT and contains none of the forbidden keywords as
// substrings. This is a naive scan, not a parser: it can reject legitimate
// queries (a column named updated_at) and will not stop obfuscated input.
func ValidateSQL(sql string) bool {
	up := strings.ToUpper(strings.TrimSpace(sql))
	if !strings.HasPrefix(up, "SELECT") {
		return false
	}
	for _, word := range forbiddenKeywords {
		if strings.Contains(up, word) {
			return false
		}
	}
	return true
}

// MakeFilename derives the CSV attachment name from keywords in the user's
// message plus today's ISO date.
func MakeFilename(userMessage string) string {
	lower := strings.ToLower(userMessage)

	name := "analytics"
	switch {
	case strings.Contains(lower, "увольн"):
		name = "fires"
	case strings.Contains(lower, "найм"):
		name = "hires"
	case strings.Contains(lower, "статистик"):
		name = "stats"
	case strings.Contains(lower, "график"):
		name = "chart"
	}

	return name + "_" + time.Now().Format("2006-01-02") + ".csv"
}
