package util

import "time"

// Now devolve o instante atual em UTC. Todo timestamp persistido usa este fuso;
// conversão para fuso de exibição acontece apenas na apresentação.
func Now() time.Time {
	return time.Now().UTC()
}

// FormatLocal formata timestamp no fuso de exibição, ou "N/A" quando ausente.
func FormatLocal(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "N/A"
	}
	return t.In(loc).Format("02/01/2006 15:04:05")
}
