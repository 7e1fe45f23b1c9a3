package domain

import "time"

// DateLayout is the MM/DD/YYYY calendar date format stored on licenses and accounts.
const DateLayout = "01/02/2006"

const LicenseKeyLength = 16

type License struct {
	Key         string    `gorm:"column:license_key;primaryKey;size:16" json:"license"`
	DateCreated string    `gorm:"size:10;not null" json:"date_created"`
	CreatedAt   time.Time `json:"-"`
}

// Today renders t as a calendar date in DateLayout.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}
