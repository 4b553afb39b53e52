package domain

// Query is the request-scoped parameter object passed into every analytic call
type Query struct {
	Property  string `json:"property" validate:"required,property_name"`
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
	Month     int    `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	RoomsHint int    `json:"rooms_hint,omitempty" validate:"omitempty,min=1,max=10000"`
}

// Hint returns the room-count hint, or nil if none was supplied
func (q Query) Hint() *int {
	if q.RoomsHint <= 0 {
		return nil
	}
	h := q.RoomsHint
	return &h
}

// Property describes a managed property and where its snapshots live
type Property struct {
	Label  string `json:"label" yaml:"label"`
	Folder string `json:"folder" yaml:"folder"`
	Rooms  int    `json:"rooms" yaml:"rooms"`
}
