package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// EventHashLength is the number of hex characters in an event hash
const EventHashLength = 16

// EventHash fingerprints the semantic fields of a usage event. Each field is
// length-prefixed and absent codes are encoded with a marker distinct from any
// present value, so field boundaries cannot be shifted to forge a collision.
func EventHash(userID string, action types.ActionType, featureCode, productCode string) string {
	h := sha256.New()
	writeField(h, userID, true)
	writeField(h, string(action), true)
	writeField(h, featureCode, featureCode != "")
	writeField(h, productCode, productCode != "")
	return hex.EncodeToString(h.Sum(nil))[:EventHashLength]
}

func writeField(w io.Writer, v string, present bool) {
	if !present {
		_, _ = w.Write([]byte{0})
		return
	}
	var n [9]byte
	n[0] = 1
	binary.BigEndian.PutUint64(n[1:], uint64(len(v)))
	_, _ = w.Write(n[:])
	_, _ = w.Write([]byte(v))
}

// ComputeHash sets x.Hash from the event fields and returns it
func (x *UsageEvent) ComputeHash() string {
	x.Hash = EventHash(x.UserID, x.ActionType, x.FeatureCode, x.ProductCode)
	return x.Hash
}
