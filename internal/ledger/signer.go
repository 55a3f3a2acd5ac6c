package ledger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// CanonicalPayload serializes the signed fields of an entry in the fixed
// audit format: id, timestamp (RFC3339Nano UTC), actor id, role, action,
// resource, outcome and risk score, joined by newlines. This explicit
// ordering is part of the audit format itself; changing it breaks
// verification of every previously signed entry.
func CanonicalPayload(e core.AuditEntry) []byte {
	fields := []string{
		e.ID,
		e.Time.UTC().Format(time.RFC3339Nano),
		e.ActorID,
		string(e.Role),
		e.Action,
		e.Resource,
		string(e.Outcome),
		strconv.FormatFloat(e.RiskScore, 'f', -1, 64),
	}
	return []byte(strings.Join(fields, "\n"))
}

// Key is a named HMAC signing secret.
type Key struct {
	ID     string `yaml:"id" json:"id"`
	Secret []byte `yaml:"secret" json:"-"`
}

// Signer signs entries with the active key and verifies against the full
// key history, so rotating the active key does not invalidate entries
// signed under a retired one.
type Signer struct {
	active Key
	keys   map[string][]byte
}

func NewSigner(active Key, retired ...Key) (*Signer, error) {
	if active.ID == "" || len(active.Secret) == 0 {
		return nil, fmt.Errorf("active signing key requires an id and a non-empty secret")
	}
	keys := map[string][]byte{active.ID: active.Secret}
	for _, k := range retired {
		if k.ID == "" || len(k.Secret) == 0 {
			return nil, fmt.Errorf("retired signing key requires an id and a non-empty secret")
		}
		if _, dup := keys[k.ID]; dup {
			return nil, fmt.Errorf("duplicate signing key id '%s'", k.ID)
		}
		keys[k.ID] = k.Secret
	}
	return &Signer{active: active, keys: keys}, nil
}

// Sign returns the key id and hex HMAC-SHA256 signature for the entry.
func (s *Signer) Sign(e core.AuditEntry) (kid, sig string) {
	mac := hmac.New(sha256.New, s.active.Secret)
	mac.Write(CanonicalPayload(e))
	return s.active.ID, hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature under the entry's key id and compares
// it to the stored one in constant time.
func (s *Signer) Verify(e core.AuditEntry) bool {
	secret, ok := s.keys[e.KeyID]
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(CanonicalPayload(e))
	expected := mac.Sum(nil)

	stored, err := hex.DecodeString(e.Signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, stored)
}
