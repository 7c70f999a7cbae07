package domain

// DefaultWindowSize es la cantidad de ticks que alimentan la media móvil.
const DefaultWindowSize = 10

// PricePoint es una observación (YES, NO) de un tick.
type PricePoint struct {
	Yes float64
	No  float64
}

// PriceWindow es un buffer FIFO acotado de observaciones de precio por serie.
// Al exceder la capacidad se descarta la observación más antigua.
type PriceWindow struct {
	capacity int
	points   []PricePoint
}

// NewPriceWindow crea una ventana con la capacidad dada.
// Con capacity <= 0 usa DefaultWindowSize.
func NewPriceWindow(capacity int) *PriceWindow {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &PriceWindow{
		capacity: capacity,
		points:   make([]PricePoint, 0, capacity),
	}
}

// Update añade la observación y evicta la más antigua si la ventana está llena.
func (w *PriceWindow) Update(yes, no float64) {
	w.points = append(w.points, PricePoint{Yes: yes, No: no})
	if len(w.points) > w.capacity {
		w.points = w.points[1:]
	}
}

// Averages devuelve la media de cada lado sobre el contenido actual.
// Con la ventana vacía devuelve (0, 0) — el caller debe saltarse la
// detección de dips hasta tener al menos una observación.
func (w *PriceWindow) Averages() (avgYes, avgNo float64) {
	if len(w.points) == 0 {
		return 0, 0
	}
	for _, p := range w.points {
		avgYes += p.Yes
		avgNo += p.No
	}
	n := float64(len(w.points))
	return avgYes / n, avgNo / n
}

// Len devuelve la cantidad de observaciones actuales.
func (w *PriceWindow) Len() int { return len(w.points) }

// Reset vacía la ventana. Se invoca en cada rollover de instancia.
func (w *PriceWindow) Reset() { w.points = w.points[:0] }
