package telegram

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/ashureev/hr-analyst-bot/internal/store"
)

// utf8BOM makes Excel detect UTF-8 in the attached CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SendTable encodes a result set as a semicolon-delimited CSV and sends it as
// a document attachment.
func (c *Client) SendTable(ctx context.Context, chatID string, rs *store.ResultSet, filename string) Result {
	if rs.Empty() {
		return Result{OK: false, Description: "empty rows"}
	}
	return c.SendDocument(ctx, chatID, filename, encodeCSV(rs))
}

func encodeCSV(rs *store.ResultSet) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	_ = w.Write(rs.Columns)
	for _, row := range rs.Rows {
		record := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			record[i] = formatCell(row[col])
		}
		_ = w.Write(record)
	}
	w.Flush()

	return buf.Bytes()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
