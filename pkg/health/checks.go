package health

import (
	"context"
	"fmt"
)

// Pinger is satisfied by the Redis and Postgres clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck reports down when p cannot be reached. Optional dependencies
// degrade instead.
func PingCheck(p Pinger, optional bool) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := p.Ping(ctx); err != nil {
			status := StatusDown
			if optional {
				status = StatusDegraded
			}
			return ComponentHealth{Status: status, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

// CorpusCheck reports down while the loaded corpus has no documents.
func CorpusCheck(documents func() int) Check {
	return func(ctx context.Context) ComponentHealth {
		n := documents()
		if n == 0 {
			return ComponentHealth{Status: StatusDown, Message: "no documents loaded"}
		}
		return ComponentHealth{Status: StatusUp, Message: fmt.Sprintf("%d documents", n)}
	}
}
