package polymarket

import (
	"fmt"
	"strings"
	"time"
)

// Series soportadas por el provider.
const (
	SeriesHourly  = "hourly"
	SeriesQuarter = "15m"
)

// Los slugs de los mercados de Bitcoin se derivan de la hora de Nueva York,
// no de UTC: "bitcoin-up-or-down-december-12-9pm-et".
var eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("polymarket: load location %s: %v", name, err))
	}
	return loc
}

// SlugFor devuelve el slug del evento activo de la serie en el instante
// dado. El slug identifica la instancia: cuando cambia, la anterior expiró.
func SlugFor(series string, now time.Time) string {
	if series == SeriesQuarter {
		return quarterSlug(now)
	}
	return hourlySlug(now)
}

// hourlySlug apunta al mercado de la hora EN CURSO (truncando, no
// redondeando): a las 9:59pm ET el mercado activo sigue siendo el de 9pm.
func hourlySlug(now time.Time) string {
	t := now.In(eastern).Truncate(time.Hour)
	return fmt.Sprintf("bitcoin-up-or-down-%s-%d-%d%s-et",
		monthName(t), t.Day(), hour12(t), amPM(t))
}

// quarterSlug es la variante de 15 minutos: el minuto se trunca al cuarto
// de hora y se añade al slug ("...-215pm-et").
func quarterSlug(now time.Time) string {
	t := now.In(eastern)
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), (t.Minute()/15)*15, 0, 0, eastern)
	return fmt.Sprintf("bitcoin-up-or-down-%s-%d-%d%02d%s-et",
		monthName(t), t.Day(), hour12(t), t.Minute(), amPM(t))
}

func monthName(t time.Time) string {
	return strings.ToLower(t.Month().String())
}

// hour12 devuelve la hora en formato de 12 sin cero inicial (1..12).
func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

func amPM(t time.Time) string {
	if t.Hour() < 12 {
		return "am"
	}
	return "pm"
}
