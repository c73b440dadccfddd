package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a strong ETag from a document id and its last update.
// Extra parts (a list size, a filter) are folded into the hash.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time, extra ...string) string {
	h := sha1.New()
	h.Write(id[:])
	h.Write([]byte(strconv.FormatInt(updatedAt.UTC().UnixNano(), 10)))
	for _, e := range extra {
		h.Write([]byte{0})
		h.Write([]byte(e))
	}
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`
}
