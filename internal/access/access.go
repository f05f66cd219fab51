// Package access implements the authorization gate: an ordered privilege
// level per caller, compared against the level a route requires. Level
// derivation (token lookup, mTLS identity, ...) is a collaborator behind the
// Deriver interface; the gate only compares.
package access

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Level is an ordered privilege value. Higher means more privileged.
type Level int

const (
	LevelPublic Level = 0
	LevelUser   Level = 1
	LevelAdmin  Level = 2
)

func (l Level) String() string {
	switch l {
	case LevelPublic:
		return "public"
	case LevelUser:
		return "user"
	case LevelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Deriver resolves the caller's level from the raw request. Implementations
// belong to the credential layer (see internal/token for the shipped one);
// the gate never inspects credentials itself.
//
// ok=false means the deriver could not establish a level for this caller.
type Deriver interface {
	LevelFor(r *http.Request) (level Level, ok bool)
}

// DeriverFunc adapts a plain function to the Deriver interface.
type DeriverFunc func(r *http.Request) (Level, bool)

func (f DeriverFunc) LevelFor(r *http.Request) (Level, bool) { return f(r) }

// Denial reason tokens, stable for logs.
const (
	ReasonInsufficientLevel = "insufficient-level"
)

// Decision is the outcome of one gate check.
type Decision struct {
	Allowed bool
	Caller  Level  // derived level, or the gate's default
	Reason  string // set when Allowed is false
}

// Gate compares derived caller levels against route requirements.
//
// The default level is applied whenever the deriver is absent or answers
// ok=false. It is an explicit constructor argument so the wiring, not the
// gate, decides what an anonymous caller is worth; there is no silent zero.
type Gate struct {
	deriver      Deriver
	defaultLevel Level
	logger       *zap.Logger
}

// NewGate builds a gate. deriver may be nil, in which case every caller is
// checked at defaultLevel.
func NewGate(deriver Deriver, defaultLevel Level, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		deriver:      deriver,
		defaultLevel: defaultLevel,
		logger:       logger,
	}
}

// DefaultLevel reports the level applied when no derivation is available.
func (g *Gate) DefaultLevel() Level { return g.defaultLevel }

// Check derives the caller's level and compares it against required.
// Allowed iff caller >= required.
func (g *Gate) Check(r *http.Request, required Level) Decision {
	caller := g.defaultLevel
	if g.deriver != nil {
		if level, ok := g.deriver.LevelFor(r); ok {
			caller = level
		} else {
			g.logger.Debug("no derived level, default applies",
				zap.String("default", g.defaultLevel.String()),
			)
		}
	}

	if caller >= required {
		return Decision{Allowed: true, Caller: caller}
	}
	return Decision{
		Allowed: false,
		Caller:  caller,
		Reason:  ReasonInsufficientLevel,
	}
}
