// Package visualizer renders best-effort charts for analyst result sets.
//
// A language model picks the chart kind and axis fields as structured data;
// the reply is parsed permissively and anything unparseable or unrenderable
// degrades to "no chart" instead of failing the request.
package visualizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/hr-analyst-bot/internal/llm"
	"github.com/ashureev/hr-analyst-bot/internal/store"
)

const maxChartRows = 50

// Directive is the structured chart decision produced by the model.
type Directive struct {
	Type   string `json:"type"` // line|bar|pie|scatter|none
	X      string `json:"x"`
	Y      string `json:"y"`
	Title  string `json:"title"`
	XLabel string `json:"xlabel"`
	YLabel string `json:"ylabel"`
}

// Groupings classifies result columns for the directive prompt.
type Groupings struct {
	Categorical []string
	Numeric     []string
	Temporal    []string
}

// Service asks the model for a chart directive and renders it to PNG bytes.
type Service struct {
	llm       llm.Completer
	groupings Groupings
	logger    *slog.Logger
}

// New creates a visualizer service.
func New(completer llm.Completer, groupings Groupings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{llm: completer, groupings: groupings, logger: logger}
}

// Visualize returns PNG bytes for the result set, or nil when no chart is
// produced. All failures are logged and swallowed.
func (s *Service) Visualize(ctx context.Context, rs *store.ResultSet, userQuery string) []byte {
	if rs.Empty() {
		return nil
	}

	reply, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Text: s.directivePrompt(userQuery, rs.Columns)}},
		Temperature: 0,
		MaxTokens:   300,
	})
	if err != nil {
		s.logger.Warn("chart directive request failed", "error", err)
		return nil
	}

	d := ParseDirective(reply)
	if d.Type == "none" {
		return nil
	}

	img, err := render(d, rs)
	if err != nil {
		s.logger.Warn("chart rendering failed", "type", d.Type, "error", err)
		return nil
	}
	return img
}

func (s *Service) directivePrompt(userQuery string, columns []string) string {
	return fmt.Sprintf(`Ты — помощник по визуализации HR-данных.

Запрос: "%s"
Поля: %s

Категориальные: %s
Числовые: %s
Временные: %s

Ответь в формате JSON без комментариев и объяснений.

Пример:
{
  "type": "bar",
  "x": "department_3",
  "y": "firecount",
  "title": "Увольнения по департаментам",
  "xlabel": "Департамент",
  "ylabel": "Увольнения"
}`,
		userQuery,
		strings.Join(columns, ", "),
		strings.Join(s.groupings.Categorical, ", "),
		strings.Join(s.groupings.Numeric, ", "),
		strings.Join(s.groupings.Temporal, ", "),
	)
}

// ParseDirective parses the model reply into a Directive. Backticks are
// stripped and any prose before the first "{" is discarded; any remaining
// parse failure yields {Type: "none"}.
func ParseDirective(text string) Directive {
	none := Directive{Type: "none"}

	cleaned := strings.Trim(strings.TrimSpace(text), "`")
	if i := strings.Index(cleaned, "{"); i >= 0 {
		cleaned = cleaned[i:]
	}

	var d Directive
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		return none
	}
	if d.Type == "" {
		return none
	}
	return d
}
