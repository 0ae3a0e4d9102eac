package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerRecordRoundTripWithoutMode(t *testing.T) {
	r := LedgerRecord{Fingerprint: fingerprint([]byte("hello"))}
	encoded := EncodeLedgerRecord(r)
	require.Len(t, encoded, 32)

	decoded, err := DecodeLedgerRecord(encoded)
	require.NoError(t, err)
	require.Equal(t, r.Fingerprint, decoded.Fingerprint)
	require.Nil(t, decoded.Mode)
}

func TestLedgerRecordRoundTripWithMode(t *testing.T) {
	mode := uint32(0644)
	r := LedgerRecord{Fingerprint: fingerprint([]byte("hello")), Mode: &mode}
	encoded := EncodeLedgerRecord(r)
	require.Len(t, encoded, 36)

	decoded, err := DecodeLedgerRecord(encoded)
	require.NoError(t, err)
	require.Equal(t, r.Fingerprint, decoded.Fingerprint)
	require.NotNil(t, decoded.Mode)
	require.Equal(t, mode, *decoded.Mode)
}

func TestLedgerRecordCorruptLengthFails(t *testing.T) {
	_, err := DecodeLedgerRecord(make([]byte, 31))
	require.Error(t, err)
	var ledgerErr *LedgerError
	require.ErrorAs(t, err, &ledgerErr)
}

func TestLedgerRecordZeroLengthFails(t *testing.T) {
	_, err := DecodeLedgerRecord(nil)
	require.Error(t, err)
}
