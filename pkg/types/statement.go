package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actor identifies who performed the activity.
type Actor struct {
	// Stable identifier of the learner (account id, eid, ...).
	// example: student-42
	ID string `json:"id,omitempty" example:"student-42"`
	// Display name.
	// example: Ada Lovelace
	Name string `json:"name,omitempty" example:"Ada Lovelace"`
	// mailto: IRI when known.
	// example: mailto:ada@example.edu
	MBox string `json:"mbox,omitempty" example:"mailto:ada@example.edu"`
}

// Verb describes what the actor did.
type Verb struct {
	// Verb IRI.
	// example: http://adlnet.gov/expapi/verbs/answered
	ID string `json:"id" example:"http://adlnet.gov/expapi/verbs/answered"`
	// Human-readable form of the verb.
	// example: answered
	Display string `json:"display,omitempty" example:"answered"`
}

// Object is the thing the actor acted upon.
type Object struct {
	// Activity IRI or platform reference.
	// example: /assessment/123/item/7
	ID string `json:"id" example:"/assessment/123/item/7"`
	// Activity type.
	// example: assessment
	Type string `json:"type,omitempty" example:"assessment"`
	// Human-readable name.
	// example: Quiz 3
	Name string `json:"name,omitempty" example:"Quiz 3"`
}

// Statement is one learner-activity event. The dispatcher never looks
// inside it; providers and upstream callers give it meaning. Treat values
// as immutable once dispatched: Result, Context and Raw are shared by every
// provider that receives the statement.
type Statement struct {
	// Unique statement id (UUID).
	// example: 6f1c2a8e-3b55-4f3e-9d0e-1c1b5e0f7a11
	ID     string `json:"id,omitempty" example:"6f1c2a8e-3b55-4f3e-9d0e-1c1b5e0f7a11"`
	Actor  Actor  `json:"actor"`
	Verb   Verb   `json:"verb"`
	Object Object `json:"object"`
	// Optional outcome (score, success, duration, ...).
	Result map[string]any `json:"result,omitempty"`
	// Optional context (course, registration, platform, ...).
	Context map[string]any `json:"context,omitempty"`
	// When the activity happened.
	Timestamp time.Time `json:"timestamp"`
	// Pre-serialized statement for callers that already hold one.
	Raw json.RawMessage `json:"raw,omitempty" swaggertype:"object"`
}

// NewStatement builds a statement with a fresh id and the current time.
func NewStatement(actor Actor, verb Verb, object Object) Statement {
	return Statement{
		ID:        uuid.NewString(),
		Actor:     actor,
		Verb:      verb,
		Object:    object,
		Timestamp: time.Now().UTC(),
	}
}

// WithDefaults returns a copy with the id and timestamp filled in when
// they are missing.
func (s Statement) WithDefaults() Statement {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	return s
}

// String renders a short form suitable for log lines. It never includes
// Result, Context or Raw.
func (s Statement) String() string {
	return fmt.Sprintf("Statement{id=%s actor=%s verb=%s object=%s}", s.ID, s.Actor.ID, s.Verb.ID, s.Object.ID)
}
