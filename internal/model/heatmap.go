package model

// HeatMapBucket aggregates the incidents of one city and category inside a
// unit's area. It is derived on every read and never stored.
type HeatMapBucket struct {
	ID            string        `json:"id"`
	Unit          string        `json:"unit"`
	City          string        `json:"city"`
	Category      CrimeCategory `json:"category"`
	CategoryLabel string        `json:"category_label"`
	Count         int           `json:"count"`
	Neighborhoods []string      `json:"neighborhoods"`
	Lat           float64       `json:"lat"`
	Lng           float64       `json:"lng"`
	Radius        float64       `json:"radius"`
}
