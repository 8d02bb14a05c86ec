package models

import "time"

// CredentialsID is the primary key of the only admin credentials row.
const CredentialsID = 1

// Credentials holds the hashed admin login for the local auth provider.
type Credentials struct {
	ID            int       `json:"-" db:"id" gorm:"primaryKey;autoIncrement:false"`
	Username      string    `json:"username" db:"username" gorm:"type:text;not null"`
	PasswordHash  string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	SecretKeyHash string    `json:"-" db:"secret_key_hash" gorm:"type:text;not null"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// CredentialsUpdate is the admin form for rotating the login. Blank new fields keep
// the current value.
type CredentialsUpdate struct {
	CurrentPassword string `json:"currentPassword"`
	NewUsername     string `json:"newUsername"`
	NewPassword     string `json:"newPassword"`
	NewSecretKey    string `json:"newSecretKey"`
}
