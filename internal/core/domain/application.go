package domain

import "time"

// ApplicationStatus represents the lifecycle state of a shift application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// validTransitions defines the allowed state machine transitions. Pending is
// the only non-terminal state; once an application leaves it, nothing but an
// admin override moves it again.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending: {ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the four known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// DecisionEntry records a single status transition on an application.
type DecisionEntry struct {
	Status    ApplicationStatus `json:"status" bson:"status"`
	ActorID   int64             `json:"actor_id" bson:"actor_id"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	Note      string            `json:"note,omitempty" bson:"note,omitempty"`
}

// Application is a staff member's bid for a shift. ShiftOwnerID denormalises
// the parent shift's owner so read scoping and the authorization gate never
// need a second lookup.
type Application struct {
	ID           string            `json:"-" bson:"_id,omitempty"`
	Ref          string            `json:"ref" bson:"ref"`
	ShiftRef     string            `json:"shift_ref" bson:"shift_ref"`
	ShiftOwnerID int64             `json:"shift_owner_id" bson:"shift_owner_id"`
	ApplicantID  int64             `json:"applicant_id" bson:"applicant_id"`
	Note         string            `json:"note,omitempty" bson:"note,omitempty"`
	Status       ApplicationStatus `json:"status" bson:"status"`
	Decisions    []DecisionEntry   `json:"decisions" bson:"decisions"`
	CreatedAt    time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" bson:"updated_at"`
}

// RelationTo derives the two ownership booleans the authorization gate
// consumes: owner-of-record (parent shift's owner) and counterparty-of-record
// (the applicant).
func (a *Application) RelationTo(userID int64) Relation {
	return Relation{
		Owner:        a.ShiftOwnerID == userID,
		Counterparty: a.ApplicantID == userID,
	}
}
