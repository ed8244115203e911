package models

import "time"

const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusError      = "ERROR"
)

type CsvFile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Filename  string    `gorm:"type:text;not null" json:"filename"`
	S3URL     *string   `gorm:"column:s3_url;type:text" json:"s3Url,omitempty"`
	Status    string    `gorm:"type:text;not null;default:'PROCESSING'" json:"status"`
	Error     *string   `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}
