package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontFamily = "Go"
	pageWidth  = 190.0
)

// PDFExporter рисует выписку в PDF. Шрифт Go встроен, поэтому кириллица печатается без внешних файлов.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render формирует PDF выписки
func (e *PDFExporter) Render(st Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 10, st.Title(), "", 1, "C", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, "Период: "+st.Period(), "", 1, "C", false, 0, "")
	if st.CoachName != "" {
		pdf.CellFormat(0, 6, "Тренер: "+st.CoachName, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeTable(pdf, st.LessonTable())
	pdf.Ln(4)
	writeTable(pdf, st.PaymentTable())
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 10)
	for _, line := range st.Summary() {
		pdf.CellFormat(0, 6, line, "", 1, "", false, 0, "")
	}

	pdf.SetFont(fontFamily, "", 8)
	pdf.CellFormat(0, 8, "Сформировано "+st.GeneratedAt.Format("02.01.2006 15:04"), "", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(pdf *gofpdf.Fpdf, t Table) {
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(0, 8, t.Title, "", 1, "", false, 0, "")

	if len(t.Rows) == 0 {
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 7, "Нет записей", "", 1, "", false, 0, "")
		return
	}

	colWidth := pageWidth / float64(len(t.Headers))

	pdf.SetFont(fontFamily, "B", 9)
	for _, header := range t.Headers {
		pdf.CellFormat(colWidth, 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 9)
	for _, row := range t.Rows {
		for _, value := range row {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
