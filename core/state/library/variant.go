package library

import (
	"errors"
	"fmt"
)

type VariantKind string

const (
	VariantKindUnknown VariantKind = "unknown"
	VariantKindBinary  VariantKind = "binary"
	VariantKindWebsite VariantKind = "website"
	VariantKindStore   VariantKind = "store"
)

func (k VariantKind) String() string {
	return string(k)
}

func VariantKindFromString(s string) VariantKind {
	switch s {
	case "binary":
		return VariantKindBinary
	case "website":
		return VariantKindWebsite
	case "store":
		return VariantKindStore
	}
	return VariantKindUnknown
}

var ErrInvalidVariant = errors.New("invalid install variant")

// Variant describes one concrete way to get an app onto the machine. Kind is the tag;
// only the fields belonging to that kind are meaningful.
type Variant struct {
	Kind VariantKind `json:"kind" yaml:"kind"`

	// Binary variants.
	DownloadURL    string `json:"download_url,omitempty" yaml:"download_url,omitempty"`
	Hash           string `json:"hash,omitempty" yaml:"hash,omitempty"`
	ExecutablePath string `json:"executable_path,omitempty" yaml:"executable_path,omitempty"`

	// Website and store variants only carry a link to navigate to.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

func BinaryVariant(downloadURL, hash, executablePath string) Variant {
	return Variant{
		Kind:           VariantKindBinary,
		DownloadURL:    downloadURL,
		Hash:           hash,
		ExecutablePath: executablePath,
	}
}

func WebsiteVariant(url string) Variant {
	return Variant{Kind: VariantKindWebsite, URL: url}
}

func StoreVariant(url string) Variant {
	return Variant{Kind: VariantKindStore, URL: url}
}

// Installable reports whether this kind of variant is installed by a worker at all.
// Link variants never are, regardless of platform.
func (v Variant) Installable() bool {
	return v.Kind == VariantKindBinary
}

func (v Variant) Validate() error {
	switch v.Kind {
	case VariantKindBinary:
		if v.DownloadURL == "" {
			return fmt.Errorf("%w: binary variant is missing a download url", ErrInvalidVariant)
		}
		if v.Hash == "" {
			return fmt.Errorf("%w: binary variant is missing a hash", ErrInvalidVariant)
		}
		if v.ExecutablePath == "" {
			return fmt.Errorf("%w: binary variant is missing an executable path", ErrInvalidVariant)
		}
	case VariantKindWebsite, VariantKindStore:
		if v.URL == "" {
			return fmt.Errorf("%w: %s variant is missing a url", ErrInvalidVariant, v.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidVariant, v.Kind)
	}
	return nil
}
