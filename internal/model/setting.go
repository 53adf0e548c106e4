package model

import "time"

// Setting key constants
const (
	SettingUpiID           = "upi_id"
	SettingBusinessName    = "business_name"
	SettingBusinessAddress = "business_address"
)

// ShopSetting is a simple key/value row for shop-level configuration such as
// the UPI payment identifier printed on bills.
type ShopSetting struct {
	Key       string    `gorm:"type:varchar(50);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
