package schema

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces instance identifiers.
type IDGenerator interface {
	Generate() (string, error)
	Type() string
}

// UUIDGenerator generates UUID v4 values
type UUIDGenerator struct{}

func (g UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (g UUIDGenerator) Type() string {
	return "uuid"
}

// ULIDGenerator generates ULID values. IDs from one generator sort in
// creation order.
type ULIDGenerator struct {
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Type() string {
	return "ulid"
}

// SequenceGenerator hands out 1, 2, 3, ... which keeps ids short enough to
// type when driving the registry by hand.
type SequenceGenerator struct {
	next uint64
}

func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

func (g *SequenceGenerator) Generate() (string, error) {
	g.next++
	return strconv.FormatUint(g.next, 10), nil
}

func (g *SequenceGenerator) Type() string {
	return "sequence"
}

// NewIDGenerator returns a fresh generator for the given type name.
func NewIDGenerator(generatorType string) (IDGenerator, error) {
	switch generatorType {
	case "", "ulid":
		return NewULIDGenerator(), nil
	case "uuid":
		return UUIDGenerator{}, nil
	case "sequence":
		return NewSequenceGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown generator type: %s", generatorType)
	}
}
