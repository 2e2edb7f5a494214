package models

import "time"

// Metrics holds the six measured quantities of one reading, or their
// per-bucket sums and means during aggregation.
type Metrics struct {
	PH       float64 `json:"pH"`
	TSS      float64 `json:"TSS"`
	TDS      float64 `json:"TDS"`
	BOD      float64 `json:"BOD"`
	COD      float64 `json:"COD"`
	Chloride float64 `json:"chloride"`
}

// MetricNames is the fixed output order of the six metrics.
var MetricNames = [6]string{"pH", "TSS", "TDS", "BOD", "COD", "chloride"}

// Values returns the metrics in MetricNames order.
func (m Metrics) Values() [6]float64 {
	return [6]float64{m.PH, m.TSS, m.TDS, m.BOD, m.COD, m.Chloride}
}

// Add returns the component-wise sum.
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		PH:       m.PH + o.PH,
		TSS:      m.TSS + o.TSS,
		TDS:      m.TDS + o.TDS,
		BOD:      m.BOD + o.BOD,
		COD:      m.COD + o.COD,
		Chloride: m.Chloride + o.Chloride,
	}
}

// Div divides every component by n.
func (m Metrics) Div(n float64) Metrics {
	return Metrics{
		PH:       m.PH / n,
		TSS:      m.TSS / n,
		TDS:      m.TDS / n,
		BOD:      m.BOD / n,
		COD:      m.COD / n,
		Chloride: m.Chloride / n,
	}
}

// Reading is one timestamped measurement owned by UserID. Readings are
// never updated or deleted.
type Reading struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	Metrics             // flattened into pH, TSS, ... in JSON
	CreatedAt time.Time `json:"createdAt"`
}
