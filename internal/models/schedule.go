package models

import "time"

// MonthNames are the Portuguese month names, indexed from 0 like the
// schedule storage paths.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// ScheduleFile is the latest schedule uploaded for a month.
type ScheduleFile struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	MonthName string    `json:"monthName"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
