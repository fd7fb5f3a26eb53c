package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"signal-io/internal/normalization"
)

// SignalIDPrefix prefixes every signal identifier.
const SignalIDPrefix = "s_"

// signalIDHexLen is the number of hex characters kept from the digest.
const signalIDHexLen = 24

// ComputeSignalID computes a deterministic signal_id using SHA256.
// Formula: SHA256(lower(trim(source))|iso_utc(ts)|trim(key))
// Returns "s_" followed by the first 24 hex characters.
func ComputeSignalID(source string, ts time.Time, key string) string {
	data := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(source)),
		normalization.ISO(ts),
		strings.TrimSpace(key),
	)

	hash := sha256.Sum256([]byte(data))
	return SignalIDPrefix + hex.EncodeToString(hash[:])[:signalIDHexLen]
}
