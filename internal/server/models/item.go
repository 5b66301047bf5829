package models

import (
	"database/sql"
	"time"
)

// Item is a vehicle-diagnostic record. UserID is the owning account and is
// nullable: seeded diagnostic data predates user accounts.
type Item struct {
	ID             int64
	Title          string
	Description    sql.NullString
	VIN            sql.NullString
	ChassisNumber  sql.NullString
	VehicleModel   sql.NullString
	ModelYear      sql.NullString
	RPM            sql.NullInt64
	EngineTemp     sql.NullInt64
	Mileage        sql.NullInt64
	DiagnosticDate sql.NullTime
	Status         sql.NullString
	Technician     sql.NullString
	EngineType     sql.NullString
	UserID         sql.NullInt64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
