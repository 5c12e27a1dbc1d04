// Command daskzg exercises the PeerDAS commitment core from the shell:
// it loads a trusted setup, extends a blob file into cells and proofs,
// verifies cells against a commitment, and recovers a full extended
// blob from a partial cell dump.
//
// Usage:
//
//	daskzg -setup trusted_setup.json cells <blob-file>
//	daskzg -setup trusted_setup.json verify <commitment-hex> <cell-index> <cell-file> <proof-hex>
//	daskzg -setup trusted_setup.json recover <cell-index>=<cell-file> ...
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/peerdas/das"
	"github.com/eth2030/peerdas/log"
)

// logger is configured by run once the verbosity flags are parsed.
var logger = log.Module("daskzg")

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It accepts
// CLI arguments without the program name so it can be tested in
// isolation.
func run(args []string) int {
	fs := flag.NewFlagSet("daskzg", flag.ContinueOnError)
	setupPath := fs.String("setup", "", "path to the trusted setup JSON file")
	insecure := fs.Uint64("insecure-secret", 0, "derive an insecure test setup from this secret instead of loading a file")
	verbosity := fs.Int("verbosity", 2, "log level 0-3 (error, warn, info, debug)")
	logJSON := fs.Bool("log.json", false, "emit JSON log records instead of text")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: daskzg -setup <file> {cells|verify|recover} ...")
		return 2
	}

	// Interactive runs get text logs; -log.json restores the service
	// default used by everything else in the module.
	format := log.FormatText
	if *logJSON {
		format = log.FormatJSON
	}
	log.SetDefault(log.New(log.Config{Level: log.VerbosityLevel(*verbosity), Format: format}))
	logger = log.Module("daskzg")

	ctx, err := newContext(*setupPath, *insecure)
	if err != nil {
		logger.Error("setup failed", "err", err)
		return 1
	}

	switch rest[0] {
	case "cells":
		err = runCells(ctx, rest[1:])
	case "verify":
		err = runVerify(ctx, rest[1:])
	case "recover":
		err = runRecover(ctx, rest[1:])
	default:
		err = fmt.Errorf("unknown command %q", rest[0])
	}
	if err != nil {
		logger.Error(rest[0]+" failed", "err", err)
		return 1
	}
	return 0
}

func newContext(setupPath string, insecureSecret uint64) (*das.Context, error) {
	if setupPath != "" {
		return das.NewContextFromFile(setupPath)
	}
	if insecureSecret != 0 {
		logger.Warn("using an insecure trusted setup", "secret", insecureSecret)
		return das.NewContextInsecure(insecureSecret)
	}
	return nil, fmt.Errorf("either -setup or -insecure-secret is required")
}

// runCells extends a blob file and prints the commitment and every
// (cell, proof) pair as hex.
func runCells(ctx *das.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cells <blob-file>")
	}
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	commitment, err := ctx.BlobToKZGCommitment(blob)
	if err != nil {
		return err
	}
	cells, proofs, err := ctx.ComputeCellsAndKZGProofs(blob)
	if err != nil {
		return err
	}

	fmt.Printf("commitment: %s\n", hexutil.Encode(commitment[:]))
	for i := range cells {
		fmt.Printf("cell %3d: %s proof: %s\n", i, hexutil.Encode(cells[i][:]), hexutil.Encode(proofs[i][:]))
	}
	return nil
}

func runVerify(ctx *das.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: verify <commitment-hex> <cell-index> <cell-file> <proof-hex>")
	}
	commitmentBytes, err := hexutil.Decode(args[0])
	if err != nil || len(commitmentBytes) != das.BytesPerCommitment {
		return fmt.Errorf("bad commitment: %v", err)
	}
	cellIndex, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad cell index: %w", err)
	}
	cellBytes, err := os.ReadFile(args[2])
	if err != nil {
		return err
	}
	if len(cellBytes) != das.BytesPerCell {
		return fmt.Errorf("cell file is %d bytes, want %d", len(cellBytes), das.BytesPerCell)
	}
	proofBytes, err := hexutil.Decode(args[3])
	if err != nil || len(proofBytes) != das.BytesPerProof {
		return fmt.Errorf("bad proof: %v", err)
	}

	var (
		commitment das.KZGCommitment
		cell       das.Cell
		proof      das.KZGProof
	)
	copy(commitment[:], commitmentBytes)
	copy(cell[:], cellBytes)
	copy(proof[:], proofBytes)

	ok, err := ctx.VerifyCellKZGProof(commitment, cellIndex, cell, proof)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("proof did not verify")
	}
	logger.Info("proof verified", "cell", cellIndex)
	return nil
}

// runRecover takes <index>=<cell-file> pairs and writes every recovered
// cell to stdout as hex.
func runRecover(ctx *das.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: recover <cell-index>=<cell-file> ...")
	}
	cellIndices := make([]uint64, 0, len(args))
	cells := make([]das.Cell, 0, len(args))
	for _, arg := range args {
		index, file, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("malformed argument %q, want <index>=<file>", arg)
		}
		cellIndex, err := strconv.ParseUint(index, 10, 64)
		if err != nil {
			return fmt.Errorf("bad cell index %q: %w", index, err)
		}
		cellBytes, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if len(cellBytes) != das.BytesPerCell {
			return fmt.Errorf("%s is %d bytes, want %d", file, len(cellBytes), das.BytesPerCell)
		}
		var cell das.Cell
		copy(cell[:], cellBytes)
		cellIndices = append(cellIndices, cellIndex)
		cells = append(cells, cell)
	}

	recovered, err := ctx.RecoverAllCells(cellIndices, cells)
	if err != nil {
		return err
	}
	for i := range recovered {
		fmt.Printf("cell %3d: %s\n", i, hexutil.Encode(recovered[i][:]))
	}
	return nil
}
