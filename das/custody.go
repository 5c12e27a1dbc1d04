package das

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/holiman/uint256"
)

// Custody errors.
var (
	ErrCustodyGroupCountTooLarge = errors.New("das: custody group count exceeds the number of custody groups")
)

// maxUint256 is the largest 256-bit value; the custody counter wraps
// past it.
var maxUint256 = &uint256.Int{math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64}

// ColumnSubnetID maps a column index to the gossip subnet that carries
// its sidecars.
func ColumnSubnetID(columnIndex uint64) SubnetID {
	return SubnetID(columnIndex % DataColumnSidecarSubnetCount)
}

// ColumnsPerSubnet is the number of columns carried by each sidecar
// subnet.
func ColumnsPerSubnet() uint64 {
	return NumberOfColumns / DataColumnSidecarSubnetCount
}

// reverseByteOrder returns a copy of b with its bytes reversed.
func reverseByteOrder(b []byte) []byte {
	reversed := make([]byte, len(b))
	for i := range b {
		reversed[i] = b[len(b)-1-i]
	}
	return reversed
}

// CustodyGroups derives the custody groups for a node: walk an
// incrementing 256-bit counter seeded with the node id, hash each
// value's little-endian encoding, and draw groups until enough are
// distinct. The walk is deterministic, so any peer can recompute
// another node's assignment.
func CustodyGroups(nodeID [32]byte, custodyGroupCount uint64) ([]CustodyGroup, error) {
	if custodyGroupCount > NumberOfCustodyGroups {
		return nil, fmt.Errorf("%w: %d > %d", ErrCustodyGroupCountTooLarge, custodyGroupCount, NumberOfCustodyGroups)
	}

	groups := make(map[CustodyGroup]struct{}, custodyGroupCount)
	one := uint256.NewInt(1)
	for currentID := new(uint256.Int).SetBytes(nodeID[:]); uint64(len(groups)) < custodyGroupCount; {
		idBytes := currentID.Bytes32()
		digest := sha256.Sum256(reverseByteOrder(idBytes[:]))
		group := CustodyGroup(binary.LittleEndian.Uint64(digest[:8]) % NumberOfCustodyGroups)
		groups[group] = struct{}{}

		if currentID.Cmp(maxUint256) == 0 {
			currentID = uint256.NewInt(0)
		} else {
			currentID.Add(currentID, one)
		}
	}

	sorted := make([]CustodyGroup, 0, len(groups))
	for group := range groups {
		sorted = append(sorted, group)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted, nil
}

// ColumnsForCustodyGroup lists the columns belonging to a custody
// group. Groups stripe across the matrix at NumberOfCustodyGroups.
func ColumnsForCustodyGroup(group CustodyGroup) ([]ColumnIndex, error) {
	if uint64(group) >= NumberOfCustodyGroups {
		return nil, fmt.Errorf("%w: custody group %d >= %d", ErrIndexOutOfRange, group, NumberOfCustodyGroups)
	}
	columnsPerGroup := NumberOfColumns / NumberOfCustodyGroups
	columns := make([]ColumnIndex, 0, columnsPerGroup)
	for i := uint64(0); i < uint64(columnsPerGroup); i++ {
		columns = append(columns, ColumnIndex(NumberOfCustodyGroups*i+uint64(group)))
	}
	return columns, nil
}

// CustodyColumns lists, in ascending order, every column a node must
// custody given its custody group count.
func CustodyColumns(nodeID [32]byte, custodyGroupCount uint64) ([]ColumnIndex, error) {
	groups, err := CustodyGroups(nodeID, custodyGroupCount)
	if err != nil {
		return nil, err
	}
	columns := make([]ColumnIndex, 0, len(groups))
	for _, group := range groups {
		groupColumns, err := ColumnsForCustodyGroup(group)
		if err != nil {
			return nil, err
		}
		columns = append(columns, groupColumns...)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })
	return columns, nil
}
