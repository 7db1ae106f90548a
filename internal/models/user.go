package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RolePromoter Role = "promoter"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePromoter
}

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" bson:"_id" json:"uid"`
	Email        string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Username     string    `gorm:"not null" bson:"username" json:"username"`
	PasswordHash string    `gorm:"not null" bson:"password_hash" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" bson:"role" json:"role"`
	Events       []string  `gorm:"serializer:json;type:jsonb;not null" bson:"events" json:"events"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// DisplayName is what reservation lists show for an attributing promoter.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
