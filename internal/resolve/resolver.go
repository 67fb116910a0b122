package resolve

import (
	"strings"

	"github.com/codeatlas/codeatlas/internal/types"
)

// Relationship labels. The vocabulary is fixed and chosen deterministically
// from the call site's syntactic shape: plain calls are "calls", attribute
// calls are "uses", and attribute calls on an I/O-flavored receiver are
// "fetches".
const (
	LabelCalls   = "calls"
	LabelUses    = "uses"
	LabelFetches = "fetches"
)

// ioReceiverHints marks receiver names that suggest an I/O boundary.
// Matching is by lowercase substring.
var ioReceiverHints = []string{
	"http", "client", "request", "response", "session",
	"db", "database", "conn", "api", "fetch", "socket",
}

// Origin is the location of the function whose call site is being resolved.
type Origin struct {
	Folder string
	File   string
	Class  string // "" when the caller is a module-level function
}

// Resolve maps a call site to a CallRelationship, or reports false when no
// declaration matches. Resolution prefers a same-class method, then a
// same-file function, then any indexed declaration; ties break on the
// lowest first-seen sequence number so repeated runs are idempotent.
func Resolve(site types.CallSite, origin Origin, ix *Index) (types.CallRelationship, bool) {
	if site.Name == "" {
		return types.CallRelationship{}, false
	}

	refs := ix.Lookup(site.Name)
	if len(refs) == 0 {
		return types.CallRelationship{}, false
	}

	if ref, ok := pick(refs, func(r Ref) bool {
		return origin.Class != "" && r.Folder == origin.Folder && r.File == origin.File && r.Class == origin.Class
	}); ok {
		return relationship(ref, site), true
	}

	if ref, ok := pick(refs, func(r Ref) bool {
		return r.Folder == origin.Folder && r.File == origin.File && r.Class == ""
	}); ok {
		return relationship(ref, site), true
	}

	// Cross-module: refs are stored in first-seen order, so the first entry
	// is the deterministic winner.
	return relationship(refs[0], site), true
}

// pick returns the first ref matching the predicate. Refs are in Seq order.
func pick(refs []Ref, match func(Ref) bool) (Ref, bool) {
	for _, r := range refs {
		if match(r) {
			return r, true
		}
	}
	return Ref{}, false
}

func relationship(ref Ref, site types.CallSite) types.CallRelationship {
	return types.CallRelationship{
		Target: ref.Target(),
		Label:  Label(site),
	}
}

// Label classifies a call site's shape into the fixed label vocabulary.
func Label(site types.CallSite) string {
	if !site.IsAttribute {
		return LabelCalls
	}
	recv := strings.ToLower(site.Receiver)
	for _, hint := range ioReceiverHints {
		if strings.Contains(recv, hint) {
			return LabelFetches
		}
	}
	return LabelUses
}
