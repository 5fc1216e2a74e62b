package eventcore

import (
	"fmt"

	"github.com/google/uuid"
)

// Identifier is an opaque, comparable, globally unique token used for
// aggregate ids and stream ids. The zero value is the nil UUID.
type Identifier struct {
	uuid uuid.UUID
}

// NewIdentifier returns a random (version 4) identifier.
func NewIdentifier() Identifier {
	return Identifier{uuid: uuid.New()}
}

// IdentifierFromSeed derives a (version 5) identifier from seed within the
// nil namespace. Equal seeds always yield equal identifiers.
func IdentifierFromSeed(seed string) Identifier {
	return Identifier{uuid: uuid.NewSHA1(uuid.Nil, []byte(seed))}
}

// ParseIdentifier parses the canonical string form of an identifier.
func ParseIdentifier(s string) (Identifier, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Identifier{}, fmt.Errorf("parse identifier %q: %w", s, err)
	}
	return Identifier{uuid: u}, nil
}

// MustParseIdentifier is like ParseIdentifier but panics on malformed input.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identifier) String() string {
	return id.uuid.String()
}

// UUID returns the underlying UUID value.
func (id Identifier) UUID() uuid.UUID {
	return id.uuid
}

func (id Identifier) IsZero() bool {
	return id.uuid == uuid.Nil
}

func (id Identifier) MarshalText() ([]byte, error) {
	return id.uuid.MarshalText()
}

func (id *Identifier) UnmarshalText(data []byte) error {
	return id.uuid.UnmarshalText(data)
}
