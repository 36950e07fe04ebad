package model

import "gorm.io/gorm"

// Models lists every table owned by the application, in dependency order.
var Models = []interface{}{
	&User{},
	&Patient{},
	&WellnessRecord{},
	&Treatment{},
	&RecordTreatment{},
	&SecurityLog{},
}

// Migrate creates or updates all application tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
