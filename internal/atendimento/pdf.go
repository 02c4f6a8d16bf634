package atendimento

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/redeabrigos/atendimento/internal/abrigo"
	"github.com/redeabrigos/atendimento/internal/util"
)

// PDF gera o documento do atendimento. Datas são formatadas no fuso de
// exibição; campos ausentes aparecem como "N/A".
func PDF(at *Atendimento, ab *abrigo.Abrigo, loc *time.Location) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Atendimento #%s", shortID(at))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	linha := func(rotulo, valor string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, tr(rotulo), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, tr(valor), "", "L", false)
	}

	linha("Solicitante:", at.Solicitante)
	linha("Telefone:", at.Telefone)
	linha("Abrigo:", ab.Nome)
	linha("Endereço:", endereco(ab))
	linha("Operador:", at.OperadorNome)
	linha("Status:", string(at.Status))
	linha("Criado em:", util.FormatLocal(&at.CriadoEm, loc))
	linha("Finalizado em:", util.FormatLocal(at.FinalizadoEm, loc))

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr("Descrição"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(at.Descricao), "", "L", false)

	if at.Conclusao != nil {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, tr("Conclusão"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(*at.Conclusao), "", "L", false)
	}

	if at.JustificativaCancelamento != nil {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, tr("Justificativa do cancelamento"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(*at.JustificativaCancelamento), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func endereco(ab *abrigo.Abrigo) string {
	return fmt.Sprintf("%s, %s, CEP %s", strOrNA(ab.Logradouro), strOrNA(ab.Bairro), strOrNA(ab.CEP))
}

func shortID(at *Atendimento) string {
	id := at.ID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
