package visualizer

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/ashureev/hr-analyst-bot/internal/llm"
	"github.com/ashureev/hr-analyst-bot/internal/store"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(context.Context, llm.CompletionRequest) (string, error) {
	return f.reply, f.err
}

func testGroupings() Groupings {
	return Groupings{
		Categorical: []string{"department_3"},
		Numeric:     []string{"fires"},
		Temporal:    []string{"report_date"},
	}
}

func testResultSet() *store.ResultSet {
	return &store.ResultSet{
		Columns: []string{"department_3", "fires"},
		Rows: []map[string]any{
			{"department_3": "Продажи", "fires": int64(5)},
			{"department_3": "ИТ", "fires": int64(3)},
			{"department_3": "HR", "fires": int64(1)},
		},
	}
}

func TestParseDirective(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string // expected Type
	}{
		{"plain json", `{"type":"bar","x":"a","y":"b"}`, "bar"},
		{"backtick fenced", "```json\n{\"type\":\"line\",\"x\":\"a\",\"y\":\"b\"}\n```", "line"},
		{"leading prose", `Вот решение: {"type":"pie","x":"a","y":"b"}`, "pie"},
		{"explicit none", `{"type":"none"}`, "none"},
		{"not json", "никакого графика не нужно", "none"},
		{"empty", "", "none"},
		{"missing type", `{"x":"a","y":"b"}`, "none"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseDirective(tc.text); got.Type != tc.want {
				t.Errorf("ParseDirective(%q).Type = %q, want %q", tc.text, got.Type, tc.want)
			}
		})
	}
}

func TestVisualizeBarChart(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"bar","x":"department_3","y":"fires","title":"Увольнения","xlabel":"Департамент","ylabel":"Увольнения"}`}
	svc := New(completer, testGroupings(), nil)

	img := svc.Visualize(context.Background(), testResultSet(), "увольнения по департаментам")

	if img == nil {
		t.Fatalf("expected a rendered chart")
	}
	if !bytes.HasPrefix(img, pngHeader) {
		t.Errorf("image is not a PNG")
	}
}

func TestVisualizePieChart(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"pie","x":"department_3","y":"fires","title":"Доли"}`}
	svc := New(completer, testGroupings(), nil)

	img := svc.Visualize(context.Background(), testResultSet(), "доли увольнений")

	if img == nil {
		t.Fatalf("expected a rendered chart")
	}
	if !bytes.HasPrefix(img, pngHeader) {
		t.Errorf("image is not a PNG")
	}
}

func TestVisualizeLineChart(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"line","x":"department_3","y":"fires","title":"Динамика"}`}
	svc := New(completer, testGroupings(), nil)

	img := svc.Visualize(context.Background(), testResultSet(), "динамика")

	if img == nil {
		t.Fatalf("expected a rendered chart")
	}
}

func TestVisualizeNone(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"none"}`}
	svc := New(completer, testGroupings(), nil)

	if img := svc.Visualize(context.Background(), testResultSet(), "вопрос"); img != nil {
		t.Errorf("none directive must produce no image")
	}
}

func TestVisualizeMissingFieldSwallowed(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"bar","x":"department_3"}`}
	svc := New(completer, testGroupings(), nil)

	if img := svc.Visualize(context.Background(), testResultSet(), "вопрос"); img != nil {
		t.Errorf("directive without y must produce no image")
	}
}

func TestVisualizeUnknownKindSwallowed(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"heatmap","x":"department_3","y":"fires"}`}
	svc := New(completer, testGroupings(), nil)

	if img := svc.Visualize(context.Background(), testResultSet(), "вопрос"); img != nil {
		t.Errorf("unknown chart kind must produce no image")
	}
}

func TestVisualizeCompletionFailureSwallowed(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{err: fmt.Errorf("completion http 500")}
	svc := New(completer, testGroupings(), nil)

	if img := svc.Visualize(context.Background(), testResultSet(), "вопрос"); img != nil {
		t.Errorf("completion failure must produce no image")
	}
}

func TestVisualizeEmptyResultSet(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"type":"bar","x":"a","y":"b"}`}
	svc := New(completer, testGroupings(), nil)

	if img := svc.Visualize(context.Background(), &store.ResultSet{}, "вопрос"); img != nil {
		t.Errorf("empty result set must produce no image")
	}
}

func TestRenderCapsRows(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{Columns: []string{"x", "y"}}
	for i := 0; i < 200; i++ {
		rs.Rows = append(rs.Rows, map[string]any{"x": fmt.Sprintf("v%d", i), "y": float64(i)})
	}

	labels, values := extractSeries(Directive{Type: "bar", X: "x", Y: "y"}, rs)
	if len(labels) != maxChartRows || len(values) != maxChartRows {
		t.Errorf("series length = %d/%d, want %d", len(labels), len(values), maxChartRows)
	}
}

func TestExtractSeriesSkipsBadRows(t *testing.T) {
	t.Parallel()

	rs := &store.ResultSet{
		Columns: []string{"x", "y"},
		Rows: []map[string]any{
			{"x": "a", "y": int64(1)},
			{"x": "b", "y": "not a number"},
			{"x": "c"},
			{"x": "d", "y": "2.5"},
		},
	}

	labels, values := extractSeries(Directive{X: "x", Y: "y"}, rs)
	if len(labels) != 2 || len(values) != 2 {
		t.Fatalf("series length = %d/%d, want 2/2", len(labels), len(values))
	}
	if labels[0] != "a" || values[1] != 2.5 {
		t.Errorf("series = %v %v", labels, values)
	}
}
