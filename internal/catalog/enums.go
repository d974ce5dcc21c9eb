package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ImageSlot is a key into a Series' images mapping
type ImageSlot string

const (
	ImageCover      ImageSlot = "cover"
	ImageBackground ImageSlot = "background"
	ImageForeground ImageSlot = "foreground"
)

var imageSlots = []ImageSlot{ImageCover, ImageBackground, ImageForeground}

// ImageSlots returns the defined image slots in canonical order
func ImageSlots() []ImageSlot {
	out := make([]ImageSlot, len(imageSlots))
	copy(out, imageSlots)
	return out
}

// Valid reports whether the slot belongs to the defined set
func (s ImageSlot) Valid() bool {
	for _, slot := range imageSlots {
		if slot == s {
			return true
		}
	}
	return false
}

// Quality is the stored numeric code of a file's quality tier
type Quality int

const (
	QualityLD Quality = iota
	QualitySD
	QualityHD
	QualityFullHD
)

// qualityLabels is indexed by Quality code
var qualityLabels = [...]string{"LD", "SD", "HD", "FULL_HD"}

// ErrInvalidQuality is wrapped by every QualityError
var ErrInvalidQuality = errors.New("invalid quality code")

// QualityError reports a quality code outside the defined tiers
type QualityError struct {
	Code int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("invalid quality code %d (want 0..%d)", e.Code, len(qualityLabels)-1)
}

func (e *QualityError) Unwrap() error {
	return ErrInvalidQuality
}

// Qualities returns all quality tiers in code order
func Qualities() []Quality {
	out := make([]Quality, len(qualityLabels))
	for i := range qualityLabels {
		out[i] = Quality(i)
	}
	return out
}

// QualityLabel resolves a raw code to its symbolic name.
// Out-of-range codes are an error, never clamped.
func QualityLabel(code int) (string, error) {
	if code < 0 || code >= len(qualityLabels) {
		return "", &QualityError{Code: code}
	}
	return qualityLabels[code], nil
}

// Label is QualityLabel for a typed code
func (q Quality) Label() (string, error) {
	return QualityLabel(int(q))
}

// String returns the label, or the raw code for unknown tiers
func (q Quality) String() string {
	label, err := q.Label()
	if err != nil {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return label
}

// ParseQuality maps a label (case-insensitive, "-" accepted for "_") back to its code
func ParseQuality(label string) (Quality, error) {
	want := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(label)), "-", "_")
	for i, l := range qualityLabels {
		if l == want {
			return Quality(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown label %q", ErrInvalidQuality, label)
}
