package util

import "database/sql"

// NullFloat64 converts a *float64 to sql.NullFloat64.
// Nil pointers are treated as invalid (null).
func NullFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// NullFloat64ToPtr converts sql.NullFloat64 to *float64.
// Invalid values are returned as nil.
func NullFloat64ToPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// PositiveFloat64Ptr returns nil for zero or negative values, so unset CLI
// flags are stored as NULL.
func PositiveFloat64Ptr(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}
