package domain

import "time"

var Tables = []interface{}{
	// Catalog
	&Product{},
	// Accounts
	&Customer{},
	&User{},
	// Sales
	&Order{},
	&Offer{},
	&ContactMessage{},
}

// SchemaMigration records an applied schema version
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false" json:"version"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

// TableName Specify table name
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
