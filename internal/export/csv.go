package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter выгружает таблицы выписки в CSV, таблицы разделены пустой строкой
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render формирует CSV выписки
func (e *CSVExporter) Render(st Statement) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	for i, t := range []Table{st.LessonTable(), st.PaymentTable()} {
		if i > 0 {
			if err := writer.Write([]string{}); err != nil {
				return nil, fmt.Errorf("write csv separator: %w", err)
			}
		}
		if err := writer.Write([]string{t.Title}); err != nil {
			return nil, fmt.Errorf("write csv title: %w", err)
		}
		if err := writer.Write(t.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range t.Rows {
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
