// Package pdf genera el acta de traslado entre departamentos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: ACTA DE TRASLADO + N° + estado + fecha              │
//	│  ORIGEN / DESTINO                                            │
//	│  TABLA: Tipo | Referencia | Secciones | Cant | P.Unit | Total│
//	│  TOTAL DEL TRASLADO                                          │
//	│  FOOTER: QR con el ID del traslado + firmas                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-traslados/internal/application/transfer"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabel = map[string]string{
	entity.TransferPending:   "PENDIENTE",
	entity.TransferCompleted: "COMPLETADO",
	entity.TransferRejected:  "RECHAZADO",
}

// SlipRenderer implementa transfer.SlipRenderer usando Maroto v2.
type SlipRenderer struct {
	author string
}

var _ transfer.SlipRenderer = (*SlipRenderer)(nil)

// NewSlipRenderer construye el generador; author queda en los metadatos del PDF.
func NewSlipRenderer(author string) *SlipRenderer { return &SlipRenderer{author: author} }

// Render genera el PDF del acta y devuelve sus bytes.
func (g *SlipRenderer) Render(_ context.Context, slip *transfer.Slip) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta de traslado "+slip.TransferID, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(lineRows(slip.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(slip))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(slip))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acta: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(slip *transfer.Slip) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ACTA DE TRASLADO", props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("N° "+slip.TransferID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(nonEmpty(statusLabel[slip.Status], slip.Status), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Creado: "+slip.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New(processedLabel(slip), props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func partiesRow(slip *transfer.Slip) core.Row {
	block := func(title, name, who string) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(who, props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(
		block("DEPARTAMENTO ORIGEN", slip.FromDepartment, "Solicitado por: "+nonEmpty(slip.CreatedBy, "-")),
		block("DEPARTAMENTO DESTINO", slip.ToDepartment, "Procesado por: "+nonEmpty(slip.ProcessedBy, "-")),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tipo", 1, align.Left),
		h("Descripción", 4, align.Left),
		h("Secciones", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func lineRows(lines []transfer.SlipLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		kind := "Ítem"
		if l.Kind == entity.LineKindService {
			kind = "Servicio"
		}
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(kind, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.FromSection, "-")+" → "+nonEmpty(l.ToSection, "-"),
				props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(strconv.FormatInt(l.Quantity, 10), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.UnitPrice.StringFixed(0)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.Total.StringFixed(0)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalRow(slip *transfer.Slip) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL DEL TRASLADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(slip.Total.StringFixed(0)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRow(slip *transfer.Slip) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(slip.TransferID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Entrega: ____________________", props.Text{Size: 9, Top: 10, Left: 4}),
			text.New("Recibe:  ____________________", props.Text{Size: 9, Top: 22, Left: 4}),
			text.New("Los precios corresponden a la fila de origen al momento del traslado.", props.Text{
				Size: 6.5, Top: 34, Left: 4, Color: colorGray,
			}),
		),
	)
}

func processedLabel(slip *transfer.Slip) string {
	if slip.ProcessedAt == nil {
		return "Sin procesar"
	}
	return "Procesado: " + slip.ProcessedAt.Format("02/01/2006 15:04")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales: "1000000" -> "1.000.000".
func formatMoney(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
