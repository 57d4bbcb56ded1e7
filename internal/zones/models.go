package zones

import (
	"time"
)

// Zone is an administratively defined service area. Capacity flags
// (PhoneCallsFull / HouseCallsFull) are toggled far more often than the
// boundary changes, so updates are partial by design.
//
// Seq and Area exist to make matching order reproducible: zones are
// evaluated by priority DESC, then area ASC (smallest zone wins a tie),
// then seq ASC (oldest zone wins if areas are equal too). All three are
// persisted, so the order never depends on what the store happens to
// return.
type Zone struct {
	ZoneID         string    `gorm:"primaryKey" json:"id"`
	Seq            int64     `gorm:"autoIncrement;uniqueIndex" json:"-"`
	Name           string    `gorm:"not null" json:"name"`
	Boundary       Boundary  `gorm:"type:jsonb" json:"boundary"`
	Area           float64   `json:"-"` // planar area of Boundary, recomputed on every boundary write
	AllowPhoneCall bool      `gorm:"default:true" json:"allow_phone_call"`
	AllowHouseCall bool      `gorm:"default:true" json:"allow_house_call"`
	PhoneCallsFull bool      `gorm:"default:false" json:"phone_calls_full"`
	HouseCallsFull bool      `gorm:"default:false" json:"house_calls_full"`
	Priority       int       `gorm:"default:0;index" json:"priority"`
	IsActive       bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Zone) TableName() string {
	return "zones.zones"
}

// ZoneSummary is the public shape for the "we serve these areas" list.
type ZoneSummary struct {
	Name           string `json:"name"`
	AllowPhoneCall bool   `json:"allow_phone_call"`
	AllowHouseCall bool   `json:"allow_house_call"`
	Priority       int    `json:"priority"`
}
