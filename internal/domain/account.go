package domain

import "time"

type Account struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Username    string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Password    string    `gorm:"size:255;not null" json:"password"`
	HardwareID  string    `gorm:"column:hardware_id;size:255;not null;default:''" json:"-"`
	HWIDResets  int       `gorm:"column:hwid_resets;not null;default:0" json:"hwid_resets"`
	Note        string    `gorm:"size:1024;not null;default:''" json:"note"`
	DateCreated string    `gorm:"size:10;not null" json:"date_created"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Bound reports whether the account is tied to a hardware identifier.
func (a *Account) Bound() bool {
	return a.HardwareID != ""
}
