package model

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:hashed_password;not null"`
	IsActive     bool   `gorm:"default:true"`
	IsStaff      bool   `gorm:"default:false"`
	// ResetToken holds the single outstanding password-reset token,
	// empty when none has been issued.
	ResetToken string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CanAccess reports whether the user may read or delete a resource
// owned by ownerID: staff see everything, others only their own.
func (u User) CanAccess(ownerID uint) bool {
	return u.IsStaff || u.ID == ownerID
}

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"index;not null"`
	Description string
	Price       float64 `gorm:"not null"`
	IsActive    bool    `gorm:"default:true"`
}

type Order struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	ProductID uint   `gorm:"index;not null"`
	Quantity  int    `gorm:"not null"`
	Status    string `gorm:"default:pending"`
}

// Token is the credential returned by login: a signed bearer token plus
// the lifetime the client should assume for it.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}
