package exercises

// Exercise is a catalog entry shared by all users.
type Exercise struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     int    `json:"version"`
}

// ExerciseInput lists the fields a caller may set. ID and Version are only read on update.
type ExerciseInput struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
	Version     int    `json:"version"`
}

// LookupItem is the id/name pair used to pick an exercise for a training detail.
type LookupItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (in ExerciseInput) toExercise() Exercise {
	return Exercise{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Version:     in.Version,
	}
}
