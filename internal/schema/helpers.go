package schema

// Float returns a pointer to v, for use in Field constraint literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for use in Field constraint literals.
func Int(v int) *int { return &v }
