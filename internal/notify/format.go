package notify

import (
	"fmt"
	"time"
)

var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// formatSpanishDateTime renders t as "lunes 3 de marzo de 2025, 10:00 h".
func formatSpanishDateTime(t time.Time) string {
	return fmt.Sprintf("%s %d de %s de %d, %02d:%02d h",
		weekdaysES[t.Weekday()], t.Day(), monthsES[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
