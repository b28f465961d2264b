package sessions

import "time"

// TrainingSession is one workout of one user. UserID is set on creation and never changes.
type TrainingSession struct {
	ID        int       `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	UserID    string    `json:"userId"`
	Version   int       `json:"version"`
}

// SessionInput carries the client-settable fields. The owner always comes from the principal.
type SessionInput struct {
	ID        int       `json:"id"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Version   int       `json:"version"`
}

func (in SessionInput) toSession(userID string) TrainingSession {
	return TrainingSession{
		ID:        in.ID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		UserID:    userID,
		Version:   in.Version,
	}
}
