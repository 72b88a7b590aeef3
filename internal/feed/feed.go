// Package feed loads decoded match files handed over by the parser
// service.
package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/stattrak/demotrak/internal/model"
)

// matchIDLen is the number of hex chars kept from the content hash when a
// file carries no match id of its own.
const matchIDLen = 16

// Load reads one decoded match file. Files without an explicit match_id get
// one derived from the content hash, so re-ingesting the same file is
// idempotent.
func Load(path string) (*model.DecodedMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read match file: %w", err)
	}

	var dec model.DecodedMatch
	if err := json.Unmarshal(data, &dec); err != nil {
		return nil, fmt.Errorf("decode match file %s: %w", path, err)
	}
	if dec.MatchID == "" {
		sum := sha256.Sum256(data)
		dec.MatchID = hex.EncodeToString(sum[:])[:matchIDLen]
	}
	if dec.Header == nil {
		dec.Header = map[string]string{}
	}
	return &dec, nil
}
