package infra

// pdf.go — Generación de facturas en PDF con go-pdf/fpdf.
// Produce una factura A4 con:
//   - Encabezado con el nombre del taller
//   - Número de factura, fecha y datos del cliente
//   - Tabla de ítems (descripción, cantidad, precio unitario, subtotal)
//   - Total en colones y su equivalente en dólares al tipo de cambio del día
//   - Detalle de pagos recibidos
//
// El archivo se guarda en storagePath/factura_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"granimar/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFacturaPDF genera la factura en PDF y devuelve la ruta del archivo.
// storagePath se crea si no existe.
func GenerateFacturaPDF(factura *model.Factura, nombreTaller, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("factura_%d.pdf", factura.Numero)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Encabezado ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, nombreTaller, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Factura", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Datos de la factura ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, fmt.Sprintf("Factura N° %d", factura.Numero), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, factura.Fecha.Format("02/01/2006"), "", 1, "R", false, 0, "")

	pdf.CellFormat(contentW, 6, "Cliente: "+factura.Cliente, "", 1, "L", false, 0, "")
	if factura.Proyecto != "" {
		pdf.CellFormat(contentW, 6, "Proyecto: "+factura.Proyecto, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Tabla de ítems ────────────────────────────────────────────────────────
	col1 := contentW * 0.72 // descripción
	col4 := contentW * 0.28 // monto

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Descripción", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Monto", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range factura.Items {
		descripcion := item.Descripcion
		if len(descripcion) > 70 {
			descripcion = descripcion[:69] + "…"
		}
		pdf.CellFormat(col1, 6, descripcion, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 6, "₡"+item.Monto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totales ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1, 7, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 7, "₡"+factura.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if !factura.TotalUSD.IsZero() {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(col1, 5, fmt.Sprintf("Equivalente USD (TC ₡%s):", factura.TipoCambio.StringFixed(2)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+factura.TotalUSD.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Pagos ─────────────────────────────────────────────────────────────────
	if len(factura.Pagos) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 9)
		for _, pago := range factura.Pagos {
			label := "Pago (" + pago.Metodo + "):"
			pdf.CellFormat(col1, 5, label, "", 0, "L", false, 0, "")
			pdf.CellFormat(col4, 5, "₡"+pago.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	// ── Pie ───────────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "Gracias por su preferencia", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
