// Package das implements the PeerDAS cryptographic core per EIP-7594
// and the Fulu DAS spec: extending a blob into proof-carrying cells,
// verifying cells singly or in batch, and recovering the full extended
// blob from any half of its cells.
package das

// PeerDAS constants from the Fulu consensus spec.
const (
	// FieldElementsPerBlob is the number of field elements in a blob.
	FieldElementsPerBlob = 4096

	// FieldElementsPerExtBlob is the number of field elements in an
	// extended blob after the 2x Reed-Solomon doubling.
	FieldElementsPerExtBlob = 2 * FieldElementsPerBlob

	// FieldElementsPerCell is the number of field elements in a single cell.
	FieldElementsPerCell = 64

	// BytesPerFieldElement is the byte size of a BLS scalar field element.
	BytesPerFieldElement = 32

	// BytesPerBlob is the byte size of a blob.
	BytesPerBlob = FieldElementsPerBlob * BytesPerFieldElement // 131072

	// BytesPerCell is the byte size of a single cell.
	BytesPerCell = FieldElementsPerCell * BytesPerFieldElement // 2048

	// BytesPerCommitment is the byte size of a compressed G1 point.
	BytesPerCommitment = 48

	// BytesPerProof is the byte size of a KZG proof.
	BytesPerProof = 48

	// CellsPerExtBlob is the number of cells in an extended blob.
	CellsPerExtBlob = FieldElementsPerExtBlob / FieldElementsPerCell // 128

	// NumberOfColumns is the number of columns in the extended data
	// matrix. Equal to CellsPerExtBlob.
	NumberOfColumns = CellsPerExtBlob

	// ReconstructionThreshold is the minimum number of distinct cells
	// needed to recover the extended blob (50%).
	ReconstructionThreshold = CellsPerExtBlob / 2

	// PrimitiveRootOfUnity generates the multiplicative group of the
	// scalar field; it shifts evaluation domains off the subgroup
	// during recovery so no denominator vanishes.
	PrimitiveRootOfUnity = 7

	// NumberOfCustodyGroups is the number of custody groups available
	// for nodes to custody.
	NumberOfCustodyGroups = 128

	// CustodyRequirement is the minimum number of custody groups an
	// honest node custodies and serves samples from.
	CustodyRequirement = 4

	// SamplesPerSlot is the minimum number of samples for an honest node.
	SamplesPerSlot = 8

	// DataColumnSidecarSubnetCount is the number of subnets used to
	// gossip data column sidecars.
	DataColumnSidecarSubnetCount = 128

	// MaxBlobCommitmentsPerBlock is the maximum number of blob
	// commitments per block.
	MaxBlobCommitmentsPerBlock = 9

	// KZGCommitmentsInclusionProofDepth is the depth of the Merkle
	// branch proving commitment inclusion in the block body. The branch
	// itself is verified by the caller, not by this package.
	KZGCommitmentsInclusionProofDepth = 4
)

// SubnetID identifies a data column sidecar gossip subnet.
type SubnetID uint64

// CustodyGroup identifies a custody group.
type CustodyGroup uint64

// ColumnIndex identifies a column in the extended data matrix.
type ColumnIndex uint64

// RowIndex identifies a row (blob) in the extended data matrix.
type RowIndex uint64

// Cell is the smallest unit of blob data that can come with its own KZG
// proof. It contains FieldElementsPerCell serialized field elements.
type Cell [BytesPerCell]byte

// KZGCommitment is a 48-byte compressed BLS12-381 G1 point committing
// to the blob's polynomial against the monomial trusted setup.
type KZGCommitment [BytesPerCommitment]byte

// KZGProof is a 48-byte compressed BLS12-381 G1 point committing to the
// quotient polynomial of a multi-point opening.
type KZGProof [BytesPerProof]byte

// DataColumnIdentifier uniquely names a column sidecar on the network.
type DataColumnIdentifier struct {
	BlockRoot   [32]byte
	ColumnIndex ColumnIndex
}

// DataColumnSidecar is the already-parsed network container for a data
// column: one cell per blob in the block with the matching commitments
// and proofs. SSZ encoding and the signed-header plumbing stay with the
// caller.
type DataColumnSidecar struct {
	// Index is the column index in [0, NumberOfColumns).
	Index ColumnIndex

	// Column contains one cell per blob in the block.
	Column []Cell

	// KZGCommitments contains one commitment per blob in the block.
	KZGCommitments []KZGCommitment

	// KZGProofs contains one proof per blob in the block.
	KZGProofs []KZGProof

	// InclusionProof is the Merkle branch for commitment inclusion,
	// of depth KZGCommitmentsInclusionProofDepth.
	InclusionProof [][32]byte
}

// MatrixEntry is a single cell of the extended data matrix along with
// its proof and position.
type MatrixEntry struct {
	Cell        Cell
	KZGProof    KZGProof
	ColumnIndex ColumnIndex
	RowIndex    RowIndex
}
