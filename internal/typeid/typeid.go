package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixShape    = "shape"
	PrefixSymbol   = "sym"
	PrefixSnapshot = "snap"
	PrefixAsset    = "asset"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid id")

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewShapeID() string    { return New(PrefixShape) }
func NewSymbolID() string   { return New(PrefixSymbol) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewAssetID() string    { return New(PrefixAsset) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalid, id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("%w: expected prefix %q but got %q in id %q", ErrInvalid, expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
