// Package idhash derives deterministic identifiers so re-running a backtest
// or replaying a live session produces the same trade IDs, which lets the
// append-only stores reject duplicates.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// TradeID hashes the identity of a trade: one config can open at most one
// position per period, so (config, period, side) is unique.
func TradeID(configName string, periodTs int64, side domain.Side) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", configName, periodTs, side)))
	return hex.EncodeToString(h[:16])
}
