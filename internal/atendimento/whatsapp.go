package atendimento

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redeabrigos/atendimento/internal/abrigo"
)

// WhatsAppLink monta o deep link de mensagem com os dados do atendimento.
// Função pura de apresentação: não altera status.
func WhatsAppLink(at *Atendimento, ab *abrigo.Abrigo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Atendimento ID: %s\n", at.ID)
	fmt.Fprintf(&b, "Solicitante: %s\n", at.Solicitante)
	fmt.Fprintf(&b, "Contato: %s\n", at.Telefone)
	fmt.Fprintf(&b, "Abrigo: %s\n", ab.Nome)
	fmt.Fprintf(&b, "Endereço: %s, %s, CEP %s\n", strOrNA(ab.Logradouro), strOrNA(ab.Bairro), strOrNA(ab.CEP))
	fmt.Fprintf(&b, "Latitude: %s\n", coordOrNA(ab.Latitude))
	fmt.Fprintf(&b, "Longitude: %s\n", coordOrNA(ab.Longitude))
	fmt.Fprintf(&b, "Descrição: %s\n", at.Descricao)
	fmt.Fprintf(&b, "Status: %s\n", at.Status)
	fmt.Fprintf(&b, "Mapa: https://www.google.com/maps/search/?api=1&query=%s,%s",
		coordOrNA(ab.Latitude), coordOrNA(ab.Longitude))

	return "https://api.whatsapp.com/send?text=" + url.QueryEscape(b.String())
}

func strOrNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "N/A"
	}
	return *s
}

func coordOrNA(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
