package mdwriter

import "errors"

// Fatal structural errors, §7. These abort build() with no partial output,
// mirroring the teacher's package-level Err* sentinels in helper.go.
var (
	// ErrNoModuleType is returned when the module graph has no <Module>
	// TypeDef, violating invariant 2 in spec.md §3.
	ErrNoModuleType = errors.New("mdwriter: module graph has no <Module> type")

	// ErrUnrepresentableCodedToken is returned (wrapped with table context)
	// when a cross-reference targets a table that cannot occupy the coded
	// token column it was asked to encode into.
	ErrUnrepresentableCodedToken = errors.New("mdwriter: table not representable in coded-token kind")

	// ErrDuplicateEntity is the panic value raised when the RID registry's
	// insert is called twice for the same logical entity (programmer error
	// in the builder, not a graph defect).
	ErrDuplicateEntity = errors.New("mdwriter: entity already has an assigned RID")
)

// WarnCode enumerates the non-fatal graph warnings from §7.
type WarnCode int

const (
	// WarnNilGraphEntry: a nil slot inside an ownership list (fields,
	// methods, events, properties, params) was skipped.
	WarnNilGraphEntry WarnCode = iota
	// WarnConstantKindMismatch: a Constant's declared ElementType disagrees
	// with the runtime kind of its value (§4.6.3).
	WarnConstantKindMismatch
	// WarnUnknownResourceKind: a resource's kind tag did not match any of
	// the three variants in §4.6.1. Also reported when embedded resource
	// bytes or field RVA data are dropped because no byte-chunk store is
	// configured for them.
	WarnUnknownResourceKind
	// WarnUnsupportedTokenRequest: get_token was asked to tokenize an
	// object that is neither an entity nor a string (§4.6.2).
	WarnUnsupportedTokenRequest
)

// BuildWarning is a single non-fatal diagnostic collected during a build.
type BuildWarning struct {
	Code    WarnCode
	Message string
	// Entity is the graph node the warning concerns, if any. Left untyped
	// (any) because warnings may concern any of the many entity kinds in
	// graph.go; callers that care can type-switch.
	Entity any
}

// WarningSink receives BuildWarning values as they're discovered. When none
// is supplied, warnings go to nopSink and are discarded; SliceSink is a
// simple in-memory collector a host can pass in, and hosts that want to
// stream diagnostics elsewhere (logging, metrics) supply their own.
type WarningSink interface {
	Add(w BuildWarning)
}

// SliceSink is a WarningSink that appends to an in-memory slice.
type SliceSink struct {
	Warnings []BuildWarning
}

// Add implements WarningSink.
func (s *SliceSink) Add(w BuildWarning) {
	s.Warnings = append(s.Warnings, w)
}

// nopSink discards every warning; used when Options.Warnings is nil.
type nopSink struct{}

func (nopSink) Add(BuildWarning) {}

// sentinelToken is returned by the token service for an unsupported object
// kind, per §7: table tag 0xFF (never a real table) with rid 0x00FFFFFF.
const sentinelToken uint32 = 0xFF000000 | 0x00FFFFFF
