package das

import (
	"bytes"
	"errors"
	"math/rand"
	"sync"
	"testing"
)

// The test context and the extended fixture for the seeded random blob
// are shared across tests: building them dominates test time.
var (
	ctxOnce sync.Once
	testCtx *Context
	ctxErr  error

	fixtureOnce sync.Once
	fixture     struct {
		blob       []byte
		commitment KZGCommitment
		cells      [CellsPerExtBlob]Cell
		proofs     [CellsPerExtBlob]KZGProof
		err        error
	}
)

func testContext(t *testing.T) *Context {
	t.Helper()
	ctxOnce.Do(func() {
		testCtx, ctxErr = NewContextInsecure(1337)
	})
	if ctxErr != nil {
		t.Fatalf("NewContextInsecure: %v", ctxErr)
	}
	return testCtx
}

// randomBlob builds a deterministic blob: each field element gets 31
// random low bytes, keeping every encoding canonical.
func randomBlob(seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	blob := make([]byte, BytesPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		element := blob[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		rng.Read(element[1:])
	}
	return blob
}

func randomFixture(t *testing.T) {
	t.Helper()
	ctx := testContext(t)
	fixtureOnce.Do(func() {
		fixture.blob = randomBlob(0x5eed)
		fixture.commitment, fixture.err = ctx.BlobToKZGCommitment(fixture.blob)
		if fixture.err != nil {
			return
		}
		fixture.cells, fixture.proofs, fixture.err = ctx.ComputeCellsAndKZGProofs(fixture.blob)
	})
	if fixture.err != nil {
		t.Fatalf("fixture: %v", fixture.err)
	}
}

func TestComputeCellsMatchesProverPath(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	cells, err := ctx.ComputeCells(fixture.blob)
	if err != nil {
		t.Fatalf("ComputeCells: %v", err)
	}
	if cells != fixture.cells {
		t.Fatal("FFT extension and per-coset evaluation disagree")
	}
}

func TestZeroBlob(t *testing.T) {
	ctx := testContext(t)
	blob := make([]byte, BytesPerBlob)

	commitment, err := ctx.BlobToKZGCommitment(blob)
	if err != nil {
		t.Fatalf("BlobToKZGCommitment: %v", err)
	}
	cells, proofs, err := ctx.ComputeCellsAndKZGProofs(blob)
	if err != nil {
		t.Fatalf("ComputeCellsAndKZGProofs: %v", err)
	}

	var zeroCell Cell
	for i := range cells {
		if cells[i] != zeroCell {
			t.Fatalf("cell %d of the zero blob is not zero", i)
		}
	}

	// Every proof is the commitment to the zero polynomial: the point
	// at infinity, which is also the blob commitment itself.
	for i := range proofs {
		if proofs[i] != KZGProof(commitment) {
			t.Fatalf("proof %d = %x, want the zero commitment", i, proofs[i])
		}
	}

	for _, cellIndex := range []uint64{0, 1, 63, CellsPerExtBlob - 1} {
		ok, err := ctx.VerifyCellKZGProof(commitment, cellIndex, cells[cellIndex], proofs[cellIndex])
		if err != nil {
			t.Fatalf("VerifyCellKZGProof(%d): %v", cellIndex, err)
		}
		if !ok {
			t.Fatalf("zero-blob cell %d did not verify", cellIndex)
		}
	}
}

func TestConstantBlob(t *testing.T) {
	ctx := testContext(t)
	blob := make([]byte, BytesPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		blob[i*BytesPerFieldElement+BytesPerFieldElement-1] = 1
	}

	commitment, err := ctx.BlobToKZGCommitment(blob)
	if err != nil {
		t.Fatalf("BlobToKZGCommitment: %v", err)
	}
	cells, proofs, err := ctx.ComputeCellsAndKZGProofs(blob)
	if err != nil {
		t.Fatalf("ComputeCellsAndKZGProofs: %v", err)
	}

	for _, cellIndex := range []uint64{0, 17, CellsPerExtBlob - 1} {
		ok, err := ctx.VerifyCellKZGProof(commitment, cellIndex, cells[cellIndex], proofs[cellIndex])
		if err != nil {
			t.Fatalf("VerifyCellKZGProof(%d): %v", cellIndex, err)
		}
		if !ok {
			t.Fatalf("constant-blob cell %d did not verify", cellIndex)
		}
	}

	// Recovery from the first half reproduces every cell.
	cellIndices := make([]uint64, ReconstructionThreshold)
	half := make([]Cell, ReconstructionThreshold)
	for i := range cellIndices {
		cellIndices[i] = uint64(i)
		half[i] = cells[i]
	}
	recovered, err := ctx.RecoverAllCells(cellIndices, half)
	if err != nil {
		t.Fatalf("RecoverAllCells: %v", err)
	}
	if recovered != cells {
		t.Fatal("recovered cells differ from the originals")
	}
}

func TestProverVerifierConsistency(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	for _, cellIndex := range []uint64{0, 1, 2, 31, 64, 127} {
		ok, err := ctx.VerifyCellKZGProof(fixture.commitment, cellIndex, fixture.cells[cellIndex], fixture.proofs[cellIndex])
		if err != nil {
			t.Fatalf("VerifyCellKZGProof(%d): %v", cellIndex, err)
		}
		if !ok {
			t.Fatalf("cell %d did not verify against its own proof", cellIndex)
		}
	}
}

func TestRecoverFromOddCells(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	// Drop every even-indexed cell.
	var cellIndices []uint64
	var oddCells []Cell
	for i := uint64(1); i < CellsPerExtBlob; i += 2 {
		cellIndices = append(cellIndices, i)
		oddCells = append(oddCells, fixture.cells[i])
	}

	recovered, err := ctx.RecoverAllCells(cellIndices, oddCells)
	if err != nil {
		t.Fatalf("RecoverAllCells: %v", err)
	}
	if recovered != fixture.cells {
		t.Fatal("recovery from odd cells does not match the original cells")
	}
}

func TestRecoverFromRandomSubset(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(CellsPerExtBlob)
	count := ReconstructionThreshold + 11
	cellIndices := make([]uint64, count)
	subset := make([]Cell, count)
	for i := 0; i < count; i++ {
		cellIndices[i] = uint64(perm[i])
		subset[i] = fixture.cells[perm[i]]
	}

	recovered, err := ctx.RecoverAllCells(cellIndices, subset)
	if err != nil {
		t.Fatalf("RecoverAllCells: %v", err)
	}
	if recovered != fixture.cells {
		t.Fatal("recovery from a random subset does not match the original cells")
	}
}

func TestRecoverCellsAndKZGProofs(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	cellIndices := make([]uint64, ReconstructionThreshold)
	half := make([]Cell, ReconstructionThreshold)
	for i := range cellIndices {
		cellIndices[i] = uint64(i * 2)
		half[i] = fixture.cells[i*2]
	}

	recovered, proofs, err := ctx.RecoverCellsAndKZGProofs(cellIndices, half)
	if err != nil {
		t.Fatalf("RecoverCellsAndKZGProofs: %v", err)
	}
	if recovered != fixture.cells {
		t.Fatal("recovered cells differ from the originals")
	}
	if proofs != fixture.proofs {
		t.Fatal("regenerated proofs differ from the originals")
	}
}

func TestTamperedCell(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	tampered := fixture.cells[0]
	tampered[BytesPerCell-1] ^= 0x01

	ok, err := ctx.VerifyCellKZGProof(fixture.commitment, 0, tampered, fixture.proofs[0])
	if err != nil {
		t.Fatalf("VerifyCellKZGProof: %v", err)
	}
	if ok {
		t.Fatal("tampered cell accepted")
	}
}

func TestTamperedProof(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	// Substituting a proof for a different cell keeps the encoding a
	// valid curve point but breaks the opening.
	ok, err := ctx.VerifyCellKZGProof(fixture.commitment, 0, fixture.cells[0], fixture.proofs[1])
	if err != nil {
		t.Fatalf("VerifyCellKZGProof: %v", err)
	}
	if ok {
		t.Fatal("wrong proof accepted")
	}
}

func TestWrongCoset(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	ok, err := ctx.VerifyCellKZGProof(fixture.commitment, 1, fixture.cells[0], fixture.proofs[0])
	if err != nil {
		t.Fatalf("VerifyCellKZGProof: %v", err)
	}
	if ok {
		t.Fatal("cell accepted against the wrong coset")
	}
}

func TestVerifyInputErrors(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	if _, err := ctx.VerifyCellKZGProof(fixture.commitment, CellsPerExtBlob, fixture.cells[0], fixture.proofs[0]); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out-of-range cell index = %v, want ErrIndexOutOfRange", err)
	}

	var badProof KZGProof
	badProof[0] = 0xff
	if _, err := ctx.VerifyCellKZGProof(fixture.commitment, 0, fixture.cells[0], badProof); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("garbage proof = %v, want ErrInvalidEncoding", err)
	}

	var badCommitment KZGCommitment
	badCommitment[0] = 0xff
	if _, err := ctx.VerifyCellKZGProof(badCommitment, 0, fixture.cells[0], fixture.proofs[0]); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("garbage commitment = %v, want ErrInvalidEncoding", err)
	}
}

func TestBatchMixed(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	rowCommitments := []KZGCommitment{fixture.commitment}
	var rowIndices, columnIndices []uint64
	var cells []Cell
	var proofs []KZGProof
	for i := uint64(0); i < 8; i++ {
		rowIndices = append(rowIndices, 0)
		columnIndices = append(columnIndices, i)
		cells = append(cells, fixture.cells[i])
		proofs = append(proofs, fixture.proofs[i])
	}

	// One invalid entry: cell 8's data against cell 9's coset.
	rowIndices = append(rowIndices, 0)
	columnIndices = append(columnIndices, 9)
	cells = append(cells, fixture.cells[8])
	proofs = append(proofs, fixture.proofs[8])

	ok, err := ctx.VerifyCellKZGProofBatch(rowCommitments, rowIndices, columnIndices, cells, proofs)
	if err != nil {
		t.Fatalf("VerifyCellKZGProofBatch: %v", err)
	}
	if ok {
		t.Fatal("batch with one invalid entry accepted")
	}

	// Dropping the invalid entry makes the batch pass.
	ok, err = ctx.VerifyCellKZGProofBatch(rowCommitments, rowIndices[:8], columnIndices[:8], cells[:8], proofs[:8])
	if err != nil {
		t.Fatalf("VerifyCellKZGProofBatch: %v", err)
	}
	if !ok {
		t.Fatal("valid batch rejected")
	}
}

func TestBatchAgreesWithPerCellVerification(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	rowCommitments := []KZGCommitment{fixture.commitment}
	rowIndices := []uint64{0, 0, 0}
	columnIndices := []uint64{3, 77, 120}
	cells := []Cell{fixture.cells[3], fixture.cells[77], fixture.cells[120]}
	proofs := []KZGProof{fixture.proofs[3], fixture.proofs[77], fixture.proofs[120]}

	perCell := true
	for k := range cells {
		ok, err := ctx.VerifyCellKZGProof(rowCommitments[rowIndices[k]], columnIndices[k], cells[k], proofs[k])
		if err != nil {
			t.Fatalf("VerifyCellKZGProof: %v", err)
		}
		perCell = perCell && ok
	}
	batch, err := ctx.VerifyCellKZGProofBatch(rowCommitments, rowIndices, columnIndices, cells, proofs)
	if err != nil {
		t.Fatalf("VerifyCellKZGProofBatch: %v", err)
	}
	if batch != perCell {
		t.Fatalf("batch = %v, per-cell = %v", batch, perCell)
	}

	// Flip one bit; both forms must flip together.
	cells[1][0] ^= 0x01
	perCell = true
	for k := range cells {
		ok, err := ctx.VerifyCellKZGProof(rowCommitments[rowIndices[k]], columnIndices[k], cells[k], proofs[k])
		if err != nil {
			t.Fatalf("VerifyCellKZGProof: %v", err)
		}
		perCell = perCell && ok
	}
	batch, err = ctx.VerifyCellKZGProofBatch(rowCommitments, rowIndices, columnIndices, cells, proofs)
	if err != nil {
		t.Fatalf("VerifyCellKZGProofBatch: %v", err)
	}
	if perCell || batch {
		t.Fatalf("tampered entry: batch = %v, per-cell = %v, want both false", batch, perCell)
	}
}

func TestBatchEmpty(t *testing.T) {
	ctx := testContext(t)
	ok, err := ctx.VerifyCellKZGProofBatch(nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("VerifyCellKZGProofBatch: %v", err)
	}
	if !ok {
		t.Fatal("empty batch rejected")
	}
}

func TestBatchInputErrors(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	rowCommitments := []KZGCommitment{fixture.commitment}
	if _, err := ctx.VerifyCellKZGProofBatch(rowCommitments, []uint64{0}, []uint64{0, 1},
		[]Cell{fixture.cells[0], fixture.cells[1]}, []KZGProof{fixture.proofs[0], fixture.proofs[1]}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short rows = %v, want ErrLengthMismatch", err)
	}
	if _, err := ctx.VerifyCellKZGProofBatch(rowCommitments, []uint64{1}, []uint64{0},
		[]Cell{fixture.cells[0]}, []KZGProof{fixture.proofs[0]}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad row index = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := ctx.VerifyCellKZGProofBatch(rowCommitments, []uint64{0}, []uint64{CellsPerExtBlob},
		[]Cell{fixture.cells[0]}, []KZGProof{fixture.proofs[0]}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad column index = %v, want ErrIndexOutOfRange", err)
	}
}

func TestInsufficientRecovery(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	count := ReconstructionThreshold - 1
	cellIndices := make([]uint64, count)
	subset := make([]Cell, count)
	for i := 0; i < count; i++ {
		cellIndices[i] = uint64(i)
		subset[i] = fixture.cells[i]
	}
	if _, err := ctx.RecoverAllCells(cellIndices, subset); !errors.Is(err, ErrInsufficientCells) {
		t.Errorf("RecoverAllCells = %v, want ErrInsufficientCells", err)
	}
}

func TestDuplicateRecovery(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	cellIndices := make([]uint64, ReconstructionThreshold+1)
	subset := make([]Cell, ReconstructionThreshold+1)
	for i := 0; i <= ReconstructionThreshold; i++ {
		cellIndices[i] = uint64(i)
		subset[i] = fixture.cells[i]
	}
	cellIndices[ReconstructionThreshold] = 0
	subset[ReconstructionThreshold] = fixture.cells[0]

	if _, err := ctx.RecoverAllCells(cellIndices, subset); !errors.Is(err, ErrDuplicateCellIndex) {
		t.Errorf("RecoverAllCells = %v, want ErrDuplicateCellIndex", err)
	}
}

func TestRecoveryInputErrors(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	if _, err := ctx.RecoverAllCells([]uint64{0, 1}, []Cell{fixture.cells[0]}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatched inputs = %v, want ErrLengthMismatch", err)
	}
	indices := []uint64{CellsPerExtBlob}
	if _, err := ctx.RecoverAllCells(indices, []Cell{fixture.cells[0]}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out-of-range index = %v, want ErrIndexOutOfRange", err)
	}
}

func TestRecoveryMismatchOnCorruptedInput(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	// One cell more than the threshold: with exactly half the cells any
	// input fits some polynomial of degree < FieldElementsPerBlob, so a
	// corruption would be undetectable.
	cellIndices := make([]uint64, ReconstructionThreshold+1)
	subset := make([]Cell, ReconstructionThreshold+1)
	for i := range cellIndices {
		cellIndices[i] = uint64(i)
		subset[i] = fixture.cells[i]
	}
	// Corrupt one supplied cell: the inputs are no longer consistent
	// with any degree-bounded polynomial.
	subset[5][100] ^= 0xff

	if _, err := ctx.RecoverAllCells(cellIndices, subset); !errors.Is(err, ErrReconstructionMismatch) {
		t.Errorf("RecoverAllCells = %v, want ErrReconstructionMismatch", err)
	}
}

func TestBlobInputValidation(t *testing.T) {
	ctx := testContext(t)

	if _, err := ctx.BlobToKZGCommitment(make([]byte, BytesPerBlob-1)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short blob = %v, want ErrLengthMismatch", err)
	}

	// A field element >= r is rejected.
	blob := make([]byte, BytesPerBlob)
	for i := 0; i < BytesPerFieldElement; i++ {
		blob[i] = 0xff
	}
	if _, err := ctx.ComputeCells(blob); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("non-canonical blob = %v, want ErrInvalidEncoding", err)
	}
}

func TestCosetsPartitionExtendedDomain(t *testing.T) {
	ctx := testContext(t)

	seen := make(map[[32]byte]struct{}, FieldElementsPerExtBlob)
	for cellIndex := uint64(0); cellIndex < CellsPerExtBlob; cellIndex++ {
		coset, err := ctx.cosetForCell(cellIndex)
		if err != nil {
			t.Fatalf("cosetForCell(%d): %v", cellIndex, err)
		}
		if len(coset) != FieldElementsPerCell {
			t.Fatalf("coset %d has %d points", cellIndex, len(coset))
		}
		for i := range coset {
			key := coset[i].Bytes()
			if _, dup := seen[key]; dup {
				t.Fatalf("cosets overlap at cell %d", cellIndex)
			}
			seen[key] = struct{}{}
		}
	}
	if len(seen) != FieldElementsPerExtBlob {
		t.Fatalf("cosets cover %d points, want %d", len(seen), FieldElementsPerExtBlob)
	}
	for i := range ctx.domainExt.Roots {
		if _, ok := seen[ctx.domainExt.Roots[i].Bytes()]; !ok {
			t.Fatalf("root %d is not covered by any coset", i)
		}
	}
}

func TestDeterminismAcrossGoroutines(t *testing.T) {
	ctx := testContext(t)
	blob := randomBlob(0x5eed)

	type result struct {
		cells [CellsPerExtBlob]Cell
		err   error
	}
	results := make(chan *result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			cells, err := ctx.ComputeCells(blob)
			results <- &result{cells: cells, err: err}
		}()
	}
	first := <-results
	second := <-results
	if first.err != nil || second.err != nil {
		t.Fatalf("ComputeCells: %v / %v", first.err, second.err)
	}
	if first.cells != second.cells {
		t.Fatal("concurrent runs produced different cells")
	}
}

func TestCellCodecRoundtrip(t *testing.T) {
	randomFixture(t)

	evals, err := CellToCosetEvals(fixture.cells[7])
	if err != nil {
		t.Fatalf("CellToCosetEvals: %v", err)
	}
	cell, err := CosetEvalsToCell(evals)
	if err != nil {
		t.Fatalf("CosetEvalsToCell: %v", err)
	}
	if cell != fixture.cells[7] {
		t.Fatal("cell codec roundtrip changed bytes")
	}
}

func TestCellCodecRejectsNonCanonical(t *testing.T) {
	var cell Cell
	for i := 0; i < BytesPerFieldElement; i++ {
		cell[i] = 0xff
	}
	if _, err := CellToCosetEvals(cell); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("CellToCosetEvals = %v, want ErrInvalidEncoding", err)
	}
}

func TestRecoverMatrix(t *testing.T) {
	ctx := testContext(t)
	randomFixture(t)

	var entries []MatrixEntry
	for i := uint64(0); i < CellsPerExtBlob; i += 2 {
		entries = append(entries, MatrixEntry{
			Cell:        fixture.cells[i],
			KZGProof:    fixture.proofs[i],
			ColumnIndex: ColumnIndex(i),
			RowIndex:    0,
		})
	}

	matrix, err := ctx.RecoverMatrix(entries, 1)
	if err != nil {
		t.Fatalf("RecoverMatrix: %v", err)
	}
	if len(matrix) != CellsPerExtBlob {
		t.Fatalf("matrix has %d entries, want %d", len(matrix), CellsPerExtBlob)
	}
	for column := 0; column < CellsPerExtBlob; column++ {
		entry := matrix[column]
		if entry.ColumnIndex != ColumnIndex(column) || entry.RowIndex != 0 {
			t.Fatalf("entry %d has position (%d, %d)", column, entry.RowIndex, entry.ColumnIndex)
		}
		if !bytes.Equal(entry.Cell[:], fixture.cells[column][:]) {
			t.Fatalf("matrix cell %d differs from the original", column)
		}
		if entry.KZGProof != fixture.proofs[column] {
			t.Fatalf("matrix proof %d differs from the original", column)
		}
	}
}
