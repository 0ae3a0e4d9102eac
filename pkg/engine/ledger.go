package engine

import "encoding/binary"

// LedgerRecord is the durable record of what was last successfully applied
// to a destination-relative path: its content fingerprint and, optionally,
// its mode. Serialized as a 32-byte (fingerprint only) or 36-byte
// (fingerprint + little-endian mode) blob, per spec.md §3 and §6.
type LedgerRecord struct {
	Fingerprint [32]byte
	Mode        *uint32
}

// EncodeLedgerRecord serializes r to its on-disk form.
func EncodeLedgerRecord(r LedgerRecord) []byte {
	if r.Mode == nil {
		out := make([]byte, 32)
		copy(out, r.Fingerprint[:])
		return out
	}
	out := make([]byte, 36)
	copy(out, r.Fingerprint[:])
	binary.LittleEndian.PutUint32(out[32:], *r.Mode)
	return out
}

// DecodeLedgerRecord parses the on-disk form of a ledger record, per
// spec.md §8 (testable property 10: round-trip correctness) and §7
// (LedgerError on corruption: length not 32 or 36 bytes).
func DecodeLedgerRecord(data []byte) (LedgerRecord, error) {
	switch len(data) {
	case 32:
		var r LedgerRecord
		copy(r.Fingerprint[:], data)
		return r, nil
	case 36:
		var r LedgerRecord
		copy(r.Fingerprint[:], data[:32])
		mode := binary.LittleEndian.Uint32(data[32:])
		r.Mode = &mode
		return r, nil
	default:
		return LedgerRecord{}, &LedgerError{Reason: "record length is neither 32 nor 36 bytes"}
	}
}

// Ledger is the durable key-value store the core consumes for reconciliation
// input and Applier output. pkg/ledger provides a bbolt-backed
// implementation; the core never imports bbolt directly, keeping that
// dependency at the edge the way the teacher keeps gRPC/SSH at the edge of
// its own synchronization core.
type Ledger interface {
	// Get returns the record for path, and whether one exists.
	Get(path string) (LedgerRecord, bool, error)
	// Set durably writes the record for path. It must return only after
	// the write is durable, per spec.md §4.7's per-path durability
	// requirement.
	Set(path string, record LedgerRecord) error
	// Delete durably removes the record for path, if any.
	Delete(path string) error
	// Close releases the underlying store.
	Close() error
}
