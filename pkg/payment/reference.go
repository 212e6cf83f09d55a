package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReference builds a collision-resistant ledger reference:
// <prefix>_<userID>_<unix>_<random8>. Generated exactly once per attempt,
// before the ledger insert and the gateway call.
func NewReference(prefix string, userID uint) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%d_%s", prefix, userID, time.Now().Unix(), suffix)
}
