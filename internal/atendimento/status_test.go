package atendimento

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Aberto", StatusAberto, true},
		{"Em Atendimento", StatusEmAtendimento, true},
		{"Atendido", StatusAtendido, true},
		{"Cancelado", StatusCancelado, true},
		{"  Aberto  ", StatusAberto, true},
		{"aberto", "", false},
		{"Fechado", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := ParseStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseStatus(%q) = (%q, %v), esperado (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusAberto, StatusEmAtendimento, true},
		{StatusAberto, StatusAtendido, true},
		{StatusAberto, StatusCancelado, true},
		{StatusEmAtendimento, StatusAtendido, true},
		{StatusEmAtendimento, StatusCancelado, true},
		{StatusEmAtendimento, StatusAberto, false},
		{StatusAtendido, StatusCancelado, false},
		{StatusAtendido, StatusAberto, false},
		{StatusCancelado, StatusAtendido, false},
		{StatusCancelado, StatusEmAtendimento, false},
	}

	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%q, %q) = %v, esperado %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []Status{StatusAberto, StatusEmAtendimento} {
		if status.IsTerminal() {
			t.Fatalf("%q não deveria ser terminal", status)
		}
	}
	for _, status := range []Status{StatusAtendido, StatusCancelado} {
		if !status.IsTerminal() {
			t.Fatalf("%q deveria ser terminal", status)
		}
	}
}
