package codec

import "fmt"

// Occurrence records how many instances of a child Class may appear inside
// a parent Class in the containment grammar. Max of -1 means unbounded.
type Occurrence struct {
	Min, Max int
}

// grammar is a flat map computed once at package init from the per-class
// rule sets registered by each option/message file, rather than a chained
// class hierarchy walked at lookup time.
var grammar = map[Class]map[Class]Occurrence{}

// grammarFamilyDefault holds the catch-all rule used when a child's
// concrete Class has no entry in its parent's rule set but its Family does;
// this is the Go realization of "look up its class, or the nearest ancestor
// class present in the grammar."
var grammarFamilyDefault = map[Class]map[Family]Occurrence{}

// RegisterContainment installs (or extends) the containment rules for
// parent, inheriting nothing implicitly — callers that want a subclass to
// start from its parent's rules pass the parent's already-registered rules
// explicitly, matching how the per-class grammar is assembled once at
// startup rather than walked at lookup time.
func RegisterContainment(parent Class, rules map[Class]Occurrence) {
	existing, ok := grammar[parent]
	if !ok {
		existing = make(map[Class]Occurrence, len(rules))
		grammar[parent] = existing
	}
	for child, occ := range rules {
		existing[child] = occ
	}
}

// RegisterFamilyDefault installs a fallback occurrence rule applied to any
// child of the given Family that has no explicit per-Class rule registered
// for parent.
func RegisterFamilyDefault(parent Class, family Family, occ Occurrence) {
	existing, ok := grammarFamilyDefault[parent]
	if !ok {
		existing = make(map[Family]Occurrence)
		grammarFamilyDefault[parent] = existing
	}
	existing[family] = occ
}

// ValidateContains enforces the containment grammar for parent's children,
// counting occurrences per concrete Class (falling back to Family-level
// defaults) and raising ContainmentViolationError if any class exceeds its
// max or falls below its min. It is only ever invoked from explicit
// Validate() calls, never implicitly from Load.
func ValidateContains(parent Class, children []Element) error {
	rules := grammar[parent]
	familyRules := grammarFamilyDefault[parent]
	if len(rules) == 0 && len(familyRules) == 0 {
		return nil
	}

	counts := make(map[Class]int)
	familyCounts := make(map[Family]int)
	for _, c := range children {
		cls := c.Class()
		counts[cls]++
		if _, ok := rules[cls]; !ok {
			familyCounts[c.Family()]++
		}
	}

	for child, occ := range rules {
		n := counts[child]
		if n < occ.Min || (occ.Max >= 0 && n > occ.Max) {
			return &ContainmentViolationError{
				Parent: string(parent), Child: string(child),
				Count: n, Min: occ.Min, Max: occ.Max,
			}
		}
	}
	for fam, occ := range familyRules {
		n := familyCounts[fam]
		if n < occ.Min || (occ.Max >= 0 && n > occ.Max) {
			return &ContainmentViolationError{
				Parent: string(parent), Child: fmt.Sprintf("family:%s", fam),
				Count: n, Min: occ.Min, Max: occ.Max,
			}
		}
	}
	return nil
}
