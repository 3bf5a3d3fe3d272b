package entity

// FieldChange is the before/after pair of one product field.
type FieldChange struct {
	Before interface{} `json:"before" bson:"before"`
	After  interface{} `json:"after" bson:"after"`
}

// Changes maps a product field name to its change. A nil map means nothing changed.
type Changes map[string]FieldChange
