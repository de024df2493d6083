package infra

// pdf.go — Quote PDF generation using go-pdf/fpdf.
// Renders an A4 document with:
//   - Header with order number and issue date
//   - Client name
//   - Priced item table (product, qty, unit price, line total)
//   - Extra item lines
//   - Subtotal, per-tax breakdown, freight and bold final total
//
// The output file is saved to storagePath/orcamento_{pedido}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"orcamento/internal/dto"
)

// truncar cuts s to at most max runes, appending an ellipsis when it cuts.
// Product names carry accented characters, so cutting by byte could split a
// rune and emit invalid UTF-8 into the document.
func truncar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// GenerateOrcamentoPDF renders the quote document for a pedido.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateOrcamentoPDF(orc *dto.OrcamentoResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("orcamento_%s.pdf", orc.PedidoID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Orçamento", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Pedido %s", orc.PedidoID), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, orc.GeradoEm.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	if orc.NomeCliente != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Cliente: "+orc.NomeCliente, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.44 // product name
	col2 := contentW * 0.14 // qty
	col3 := contentW * 0.20 // unit price
	col4 := contentW * 0.22 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Preço unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Total", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range orc.Itens {
		pdf.CellFormat(col1, 6, truncar(item.NomeProduto, 37), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, item.Quantidade.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "R$ "+item.PrecoComMargem.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "R$ "+item.ValorLinha.StringFixed(2), "", 1, "R", false, 0, "")
	}

	for _, extra := range orc.ItensExtras {
		pdf.CellFormat(col1, 6, truncar(extra.Descricao, 37), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "—", "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "R$ "+extra.Valor.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(col1+col2+col3, 6, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "R$ "+orc.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")

	for _, imp := range orc.Impostos {
		label := fmt.Sprintf("%s (%s%%):", imp.Tipo, imp.Percentual.StringFixed(2))
		pdf.CellFormat(col1+col2+col3, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "R$ "+imp.Valor.StringFixed(2), "", 1, "R", false, 0, "")
	}

	if !orc.Frete.IsZero() {
		pdf.CellFormat(col1+col2+col3, 5, "Frete:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "R$ "+orc.Frete.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 8, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 8, "R$ "+orc.TotalFinal.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Valores válidos na data de emissão.", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
