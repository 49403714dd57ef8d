package planning

import "github.com/google/uuid"

// IDGenerator mints assignment ids
type IDGenerator func() string

// NewAssignmentID is the default IDGenerator
func NewAssignmentID() string {
	return "as-" + uuid.NewString()
}
