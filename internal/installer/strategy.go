package installer

import (
	"fmt"

	"github.com/eagraf/habitat-store/core/state/library"
)

// Strategy turns a variant of one kind into worker arguments. There is exactly one
// strategy per variant kind.
type Strategy interface {
	Kind() library.VariantKind
	InstallArgs(variant library.Variant) ([]string, error)
	UninstallArgs(variant library.Variant) ([]string, error)
}

// BinaryStrategy installs a zipped binary from a download url, verified against a
// base64 SHA-256 hash.
type BinaryStrategy struct{}

var _ Strategy = &BinaryStrategy{}

func (s *BinaryStrategy) Kind() library.VariantKind {
	return library.VariantKindBinary
}

func (s *BinaryStrategy) InstallArgs(variant library.Variant) ([]string, error) {
	if err := s.check(variant); err != nil {
		return nil, err
	}
	if variant.DownloadURL == "" || variant.Hash == "" {
		return nil, fmt.Errorf("%w: binary variant needs a download url and hash", library.ErrInvalidVariant)
	}
	return []string{string(library.VariantKindBinary), variant.DownloadURL, "--hash", variant.Hash}, nil
}

func (s *BinaryStrategy) UninstallArgs(variant library.Variant) ([]string, error) {
	if err := s.check(variant); err != nil {
		return nil, err
	}
	return []string{string(library.VariantKindBinary)}, nil
}

func (s *BinaryStrategy) check(variant library.Variant) error {
	if variant.Kind != library.VariantKindBinary {
		return fmt.Errorf("%w: binary strategy given a %s variant", ErrInstallNotSupported, variant.Kind)
	}
	return nil
}
