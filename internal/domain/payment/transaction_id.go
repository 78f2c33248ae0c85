package payment

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"
)

// TransactionIDPrefix starts every transaction id
const TransactionIDPrefix = "TRX"

// TransactionIDGenerator creates ids of the form
// TRX<base36 unix millis><4 hex chars>, upper-cased.
type TransactionIDGenerator struct {
	now     func() time.Time
	entropy io.Reader
}

// NewTransactionIDGenerator creates a generator backed by the wall clock
// and crypto/rand.
func NewTransactionIDGenerator() *TransactionIDGenerator {
	return &TransactionIDGenerator{now: time.Now, entropy: rand.Reader}
}

// NewTransactionIDGeneratorWith creates a generator with a fixed clock and
// entropy source
func NewTransactionIDGeneratorWith(now func() time.Time, entropy io.Reader) *TransactionIDGenerator {
	return &TransactionIDGenerator{now: now, entropy: entropy}
}

// Generate returns a new transaction id
func (g *TransactionIDGenerator) Generate() (string, error) {
	var suffix [2]byte
	if _, err := io.ReadFull(g.entropy, suffix[:]); err != nil {
		return "", err
	}
	ms := strconv.FormatInt(g.now().UnixMilli(), 36)
	return strings.ToUpper(TransactionIDPrefix + ms + hex.EncodeToString(suffix[:])), nil
}
