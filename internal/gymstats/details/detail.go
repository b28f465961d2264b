package details

import (
	"time"

	"github.com/2beens/befit/internal/gymstats/guard"

	"github.com/shopspring/decimal"
)

var maxLoad = decimal.NewFromInt(1000)

// TrainingDetail is one exercise performed within a training session.
type TrainingDetail struct {
	ID                int             `json:"id"`
	TrainingSessionID int             `json:"trainingSessionId"`
	ExerciseID        int             `json:"exerciseId"`
	Load              decimal.Decimal `json:"load"`
	Sets              int             `json:"sets"`
	Repetitions       int             `json:"repetitions"`
	Version           int             `json:"version"`
}

// DetailView is a detail joined with its exercise name and parent session.
// OwnerID is the user_id of the parent session, the only source of detail ownership.
type DetailView struct {
	TrainingDetail
	ExerciseName string    `json:"exerciseName"`
	SessionStart time.Time `json:"sessionStart"`
	SessionEnd   time.Time `json:"sessionEnd"`
	OwnerID      string    `json:"-"`
}

type DetailInput struct {
	ID                int             `json:"id"`
	TrainingSessionID int             `json:"trainingSessionId" validate:"required"`
	ExerciseID        int             `json:"exerciseId" validate:"required"`
	Load              decimal.Decimal `json:"load"`
	Sets              int             `json:"sets" validate:"min=1,max=100"`
	Repetitions       int             `json:"repetitions" validate:"min=1,max=200"`
	Version           int             `json:"version"`
}

func (in DetailInput) toDetail() TrainingDetail {
	return TrainingDetail{
		ID:                in.ID,
		TrainingSessionID: in.TrainingSessionID,
		ExerciseID:        in.ExerciseID,
		Load:              in.Load,
		Sets:              in.Sets,
		Repetitions:       in.Repetitions,
		Version:           in.Version,
	}
}

// validate runs the tag checks plus the load range and precision check.
func (in DetailInput) validate() *guard.ValidationError {
	ve := guard.Validate(in)
	switch {
	case in.Load.IsNegative() || in.Load.GreaterThan(maxLoad):
		ve = guard.Merge(ve, guard.NewValidationError("load", "must be between 0 and 1000"))
	case !in.Load.Equal(in.Load.Truncate(2)):
		ve = guard.Merge(ve, guard.NewValidationError("load", "must have at most two decimal places"))
	}
	return ve
}
