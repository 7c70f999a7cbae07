package kalshi

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSeriesTicker es la serie horaria de Bitcoin.
const DefaultSeriesTicker = "KXBTCD"

var eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("kalshi: load location %s: %v", name, err))
	}
	return loc
}

// EventTicker deriva el ticker del evento horario activo:
// KXBTCD-25NOV2614 es el evento del 26 de noviembre de 2025 que expira a
// las 14:00 ET. Kalshi nombra el evento por la hora de EXPIRACIÓN, así que
// el evento activo lleva la hora siguiente al top de la hora en curso.
func EventTicker(series string, now time.Time) string {
	t := now.In(eastern).Truncate(time.Hour).Add(time.Hour)
	return fmt.Sprintf("%s-%02d%s%02d%02d",
		strings.ToUpper(series),
		t.Year()%100,
		strings.ToUpper(t.Month().String()[:3]),
		t.Day(),
		t.Hour(),
	)
}
