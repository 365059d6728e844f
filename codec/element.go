package codec

// Class identifies the concrete type of a wire element for the purposes of
// registry dispatch and containment-grammar lookups, made explicit so the
// containment grammar can be expressed as a flat map keyed by Class pairs
// instead of inheriting behavior through an object hierarchy.
type Class string

// Family groups concrete classes for containment-grammar fallback lookups:
// when a parent's rule set has no entry for a child's concrete Class,
// Validate falls back to the nearest ancestor class present in the grammar
// via the child's Family.
type Family string

const (
	FamilyOption  Family = "option"
	FamilyDUID    Family = "duid"
	FamilyMessage Family = "message"
	FamilyNTPSub  Family = "ntp-suboption"
)

// Element is the abstract base for every wire-representable value: it has a
// numeric wire code, a concrete Class used for registry/grammar lookups, a
// parser that consumes exactly Load's declared length from a buffer, and a
// serializer that produces its exact byte form.
type Element interface {
	// Code returns the element's numeric wire code (option type, DUID
	// type, or message type, depending on Family).
	Code() uint16

	// Class returns the concrete type name used for registry and
	// containment-grammar dispatch.
	Class() Class

	// Family returns the broad element category this Class belongs to.
	Family() Family

	// Load parses exactly len(b) bytes as this element's payload and
	// returns the number of bytes consumed. Implementations accept
	// syntactically valid but semantically invalid payloads; invariants
	// that cannot be expressed in typed fields are instead checked by
	// Validate.
	Load(b []byte) (int, error)

	// Save returns the exact byte representation of the element. For
	// every element, len(Save()) must equal the bytes consumed by the
	// matching Load call.
	Save() ([]byte, error)
}

// Validator is implemented by elements whose containment grammar must be
// checked explicitly (containers: messages, IA options, vendor options,
// relay messages). Validate is never called implicitly during Load.
type Validator interface {
	Validate() error
}

// Container is implemented by elements that hold nested child Elements,
// letting the shared Validate helper enumerate them without each container
// re-implementing grammar bookkeeping.
type Container interface {
	Element
	Children() []Element
}

// Unknown is implemented by the per-family "unknown code" variant so that
// generic code (logging, JSON rendering) can recover the raw payload of an
// element the registry did not recognize.
type Unknown interface {
	Element
	Raw() []byte
}
