// Package boardcatalog classifies the board family encoded in an ASIC's
// 64-bit board serial number, grounded on
// original_source/tt_topology/backend.py's use of eth_board_type (the
// upper word of the board-info key built from
// f"{(eth_board_type<<32)|eth_board_id:016x}").
package boardcatalog

import "fmt"

// Family identifies a Tenstorrent board family.
type Family string

const (
	FamilyN150    Family = "n150"
	FamilyN300    Family = "n300"
	FamilyGalaxy  Family = "galaxy"
	FamilyUnknown Family = "unknown"
)

// knownFamilies maps the 20-bit board-type field (serial bits [55:36])
// to a Family. Values are placeholders for the handful of SKUs this
// module has seen in the field; an unrecognized code is not fatal, it
// simply reports FamilyUnknown so discovery can still proceed.
var knownFamilies = map[uint32]Family{
	0x36: FamilyN150,
	0x43: FamilyN300,
	0x53: FamilyGalaxy,
}

// Extract pulls the board-type field (bits 55:36) out of a 64-bit board
// serial and resolves it to a Family.
func Extract(serial uint64) (Family, uint32) {
	code := uint32((serial >> 36) & 0xFFFFF)
	if f, ok := knownFamilies[code]; ok {
		return f, code
	}
	return FamilyUnknown, code
}

// IsDualASIC reports whether boards of this family carry two ASICs
// (n300, galaxy) versus one (n150). Discovery does not consult it: the
// connection graph gets one node per chip the driver enumerates.
func (f Family) IsDualASIC() bool {
	return f == FamilyN300 || f == FamilyGalaxy
}

// String implements fmt.Stringer.
func (f Family) String() string {
	return string(f)
}

// BoardID is the combined (type, id) key used to group two ASICs that
// belong to the same physical board, mirroring the Python
// eth_board_info hex key.
type BoardID struct {
	Type uint32
	ID   uint32
}

// Key renders the board identity the way original_source formats it:
// a 16-hex-digit string combining type and id into one 64-bit value.
func (b BoardID) Key() string {
	return fmt.Sprintf("%016x", (uint64(b.Type)<<32)|uint64(b.ID))
}
