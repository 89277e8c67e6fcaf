package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Provenance prefixes used in the serialised listing id.
const (
	LocalPrefix   = "draft_"
	BackendPrefix = "backend_"
)

// RefKind tells where a listing came from.
type RefKind int

const (
	RefLocal RefKind = iota
	RefBackend
)

func (k RefKind) String() string {
	if k == RefBackend {
		return "backend"
	}
	return "local"
}

// ListingRef identifies a listing. Exactly one of LocalID / BackendID is meaningful, chosen by Kind.
type ListingRef struct {
	Kind      RefKind
	LocalID   string
	BackendID int64
}

// LocalRef wraps a locally minted draft id (without the prefix).
func LocalRef(id string) ListingRef {
	return ListingRef{Kind: RefLocal, LocalID: id}
}

// BackendRef wraps a backend numeric property id.
func BackendRef(id int64) ListingRef {
	return ListingRef{Kind: RefBackend, BackendID: id}
}

// ParseRef parses the serialised form: "draft_<id>" or "backend_<n>" with n a positive
// integer in canonical decimal. Anything else yields the zero ref, which matches no listing.
func ParseRef(s string) ListingRef {
	if rest, ok := strings.CutPrefix(s, BackendPrefix); ok {
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || n <= 0 || strconv.FormatInt(n, 10) != rest {
			return ListingRef{}
		}
		return BackendRef(n)
	}
	if rest, ok := strings.CutPrefix(s, LocalPrefix); ok && rest != "" {
		return LocalRef(rest)
	}
	return ListingRef{}
}

func (r ListingRef) IsZero() bool {
	return r.Kind == RefLocal && r.LocalID == ""
}

func (r ListingRef) IsBackend() bool {
	return r.Kind == RefBackend
}

func (r ListingRef) String() string {
	if r.Kind == RefBackend {
		return BackendPrefix + strconv.FormatInt(r.BackendID, 10)
	}
	return LocalPrefix + r.LocalID
}

// MarshalJSON writes the ref as its prefixed string so stored collections stay readable.
func (r ListingRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON reads the prefixed string form.
func (r *ListingRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return errors.New("listing id is empty")
	}
	ref := ParseRef(s)
	if ref.IsZero() {
		return fmt.Errorf("invalid listing id %q", s)
	}
	*r = ref
	return nil
}
