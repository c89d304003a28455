package family

import "time"

// Parent identifies one of the two account holders. Profile details beyond
// what the share email needs live in the identity provider.
type Parent struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"display_name" gorm:"column:display_name"`
	Email       string    `json:"email" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Parent) TableName() string {
	return "parents"
}

// CoParentLink joins the two parents of a family circle. Stored once per
// direction so lookup is a single indexed read.
type CoParentLink struct {
	ParentID   string    `json:"parent_id" gorm:"column:parent_id;primaryKey"`
	CoParentID string    `json:"co_parent_id" gorm:"column:co_parent_id;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (CoParentLink) TableName() string {
	return "co_parent_links"
}

type Child struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	FamilyOf  string    `json:"family_of" gorm:"column:family_of;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	BirthDate time.Time `json:"birth_date,omitempty" gorm:"column:birth_date;type:date"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Child) TableName() string {
	return "children"
}
