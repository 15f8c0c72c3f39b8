package api

import (
	"fmt"      // Error formatting
	"net/http" // HTTP status codes

	"wallet_balance/internal/config" // Response modes

	"github.com/gin-gonic/gin" // Gin web framework
)

// Outcome is the business result of a wallet operation
type Outcome int

// Outcomes reported by the handlers
const (
	OutcomeDeposited Outcome = iota
	OutcomeExists
	OutcomeNotFound
	OutcomeUpdated
	OutcomeIntegrity
	OutcomeDeleted
	OutcomeInternal
)

// Response messages. The spelling is relied upon by existing clients.
const (
	MsgDeposited = "money submitted succesfully!"
	MsgExists    = "attempt to rewrite existing record, try PATCH method instead"
	MsgNotFound  = "the mentioned above wallet id does not exist"
	MsgUpdated   = "data updated successfully"
	MsgIntegrity = "something went wrong..."
	MsgDeleted   = "row deleted successfully!"
	MsgInternal  = "internal server error"
)

var messages = map[Outcome]string{
	OutcomeDeposited: MsgDeposited,
	OutcomeExists:    MsgExists,
	OutcomeNotFound:  MsgNotFound,
	OutcomeUpdated:   MsgUpdated,
	OutcomeIntegrity: MsgIntegrity,
	OutcomeDeleted:   MsgDeleted,
	OutcomeInternal:  MsgInternal,
}

// Responder turns an outcome into an HTTP response
type Responder interface {
	Respond(c *gin.Context, o Outcome)
}

// statusResponder writes {"message": ...} with a status picked per outcome
type statusResponder struct {
	statuses map[Outcome]int
}

// NewResponder returns the responder for a RESPONSE_MODE value.
// legacy answers every business outcome with 200, rest uses 404 and 409.
func NewResponder(mode string) (Responder, error) {
	switch mode {
	case config.ResponseModeLegacy, "":
		return &statusResponder{statuses: map[Outcome]int{
			OutcomeInternal: http.StatusInternalServerError,
		}}, nil
	case config.ResponseModeREST:
		return &statusResponder{statuses: map[Outcome]int{
			OutcomeExists:    http.StatusConflict,
			OutcomeNotFound:  http.StatusNotFound,
			OutcomeIntegrity: http.StatusConflict,
			OutcomeInternal:  http.StatusInternalServerError,
		}}, nil
	default:
		return nil, fmt.Errorf("unknown response mode %q", mode)
	}
}

func (r *statusResponder) Respond(c *gin.Context, o Outcome) {
	status, ok := r.statuses[o]
	if !ok {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"message": messages[o]})
}
