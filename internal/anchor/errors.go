package anchor

import "errors"

var (
	// ErrEmptySite indicates a site was about to be emitted with zero POIs,
	// violating the "every anchor has >=1 POI" invariant.
	ErrEmptySite = errors.New("anchor: site has no POIs")

	// ErrInvalidNode indicates a site references a node index outside the
	// graph's range.
	ErrInvalidNode = errors.New("anchor: site references invalid node index")

	// ErrDuplicateAnchorID indicates anchor_int_id assignment produced a
	// collision. Structurally impossible given sequential assignment, but
	// the invariant is checked explicitly before sites are persisted.
	ErrDuplicateAnchorID = errors.New("anchor: duplicate anchor_int_id")

	// ErrNoPOIs names the zero-POI case for callers that want to treat it
	// specially. Build itself does not return it: given zero POIs it returns
	// no sites and a nil error, since an empty anchor table is valid.
	ErrNoPOIs = errors.New("anchor: no POIs to snap")
)
