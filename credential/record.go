package credential

import "time"

// Record is a stored principal with its credential.
type Record struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:255;not null" json:"username"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName pins the GORM table to the migrated schema.
func (Record) TableName() string { return "credentials" }

// Principal returns the public projection of the record.
func (r *Record) Principal() Principal {
	return Principal{ID: r.ID, Username: r.Username, Email: r.Email}
}

// Principal is what callers and downstream handlers see of a record.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
