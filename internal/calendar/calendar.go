package calendar

import "time"

// Day is one cell of the month grid. Logged and Count carry the stored
// entry when one exists; MeatFree reflects the streak policy (unlogged and
// confirmed-zero days both count).
type Day struct {
	Date     time.Time `json:"date"`
	Logged   bool      `json:"logged"`
	Count    int       `json:"count"`
	MeatFree bool      `json:"meat_free"`
	IsToday  bool      `json:"is_today"`
}

type MonthResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Days  []*Day `json:"days"`
}
