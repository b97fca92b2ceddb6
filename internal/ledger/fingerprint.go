package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// #region fingerprint
// fingerprint hashes a canonical encoding of the divergence-relevant
// fields: state ordinal, precision, ece, stability days. The encoding is
// an explicit byte layout (big-endian IEEE-754 bits for floats) so the
// result is identical across platforms and replicas.
func fingerprint(f FieldDescriptor) string {
	buf := make([]byte, 0, 1+8+8+4)
	buf = append(buf, byte(f.State))

	var num [8]byte
	binary.BigEndian.PutUint64(num[:], math.Float64bits(f.Metrics.Precision))
	buf = append(buf, num[:]...)
	binary.BigEndian.PutUint64(num[:], math.Float64bits(f.Metrics.ECE))
	buf = append(buf, num[:]...)

	var days [4]byte
	binary.BigEndian.PutUint32(days[:], uint32(f.StabilityDays))
	buf = append(buf, days[:]...)

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// #endregion fingerprint
