package models

import "time"

type ReportStatus string

const (
	StatusPending   ReportStatus = "Pendiente"
	StatusVerifying ReportStatus = "Verificando"
	StatusSolved    ReportStatus = "Solucionado"
	StatusRejected  ReportStatus = "Rechazado"
)

// FilterAll is the list filter that disables status filtering.
const FilterAll = "Todos"

var Statuses = []ReportStatus{StatusPending, StatusVerifying, StatusSolved, StatusRejected}

func (s ReportStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Report struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Address         string       `gorm:"column:direccion;type:text;not null" json:"direccion"`
	Comment         string       `gorm:"column:comentario;type:text;not null" json:"comentario"`
	Photo           string       `gorm:"column:foto;uniqueIndex;size:255;not null" json:"foto"`
	Email           *string      `gorm:"size:255" json:"email"`
	Latitude        *float64     `gorm:"column:lat" json:"lat"`
	Longitude       *float64     `gorm:"column:lng" json:"lng"`
	Status          ReportStatus `gorm:"column:estado;type:varchar(20);not null;default:'Pendiente';index" json:"estado"`
	RejectionReason *string      `gorm:"column:razon_rechazo;type:text" json:"razon_rechazo"`
	CreatedAt       time.Time    `gorm:"column:fecha_creacion;not null;index;<-:create" json:"fecha_creacion"`
	AuthorEmail     *string      `gorm:"column:usuario_correo;size:255;index;<-:create" json:"usuario_correo"`
}

func (Report) TableName() string {
	return "reportes"
}

// Statistics holds per-status report counts. Total also includes rows whose
// status is outside the known set.
type Statistics struct {
	Pending   int64 `json:"Pendiente"`
	Verifying int64 `json:"Verificando"`
	Solved    int64 `json:"Solucionado"`
	Rejected  int64 `json:"Rechazado"`
	Total     int64 `json:"Total"`
}

// Add records count rows having the given status.
func (s *Statistics) Add(status ReportStatus, count int64) {
	switch status {
	case StatusPending:
		s.Pending += count
	case StatusVerifying:
		s.Verifying += count
	case StatusSolved:
		s.Solved += count
	case StatusRejected:
		s.Rejected += count
	}
	s.Total += count
}
