// Package window splits scaffolds into fixed-size, possibly gapped or
// overlapping sub-sequences for per-scaffold stability analysis.
package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/binrefine/internal/model"
)

// MinLength is the shortest window that is kept; shorter fragments,
// including a trailing partial window, are dropped.
const MinLength = 100

const (
	DefaultSize = 5000
	DefaultGap  = 0
)

// ErrInvalidSize is returned for negative window sizes or a stride of zero
// or less.
var ErrInvalidSize = errors.New("invalid window size")

// Size is either an absolute length in bases or a proportion of the
// scaffold being windowed.
type Size struct {
	proportional bool
	bases        int
	fraction     float64
}

// Absolute returns a size of n bases.
func Absolute(n int) Size { return Size{bases: n} }

// Proportional returns a size of f times the scaffold length.
func Proportional(f float64) Size { return Size{proportional: true, fraction: f} }

// ParseSize reads an integer as an absolute size and any other number as a
// proportion, so "100" is 100 bases and "0.5" or "1.0" is a proportion.
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		sz := Absolute(n)
		return sz, sz.validate()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Size{}, fmt.Errorf("%w %q: must be a base count or a proportion", ErrInvalidSize, s)
	}
	sz := Proportional(f)
	return sz, sz.validate()
}

// ParseGap reads a gap the way ParseSize reads a size. Negative gaps are
// allowed and make consecutive windows overlap.
func ParseGap(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Absolute(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Size{}, fmt.Errorf("%w %q: must be a base count or a proportion", ErrInvalidSize, s)
	}
	return Proportional(f), nil
}

// Proportional reports whether the size scales with scaffold length.
func (s Size) Proportional() bool { return s.proportional }

// Resolve converts the size to bases for a scaffold of the given length.
func (s Size) Resolve(length int) int {
	if s.proportional {
		return int(s.fraction * float64(length))
	}
	return s.bases
}

func (s Size) String() string {
	if s.proportional {
		return strconv.FormatFloat(s.fraction, 'f', -1, 64) + "x"
	}
	return strconv.Itoa(s.bases) + "bp"
}

func (s Size) validate() error {
	if s.bases < 0 || s.fraction < 0 {
		return fmt.Errorf("%w: %s is negative", ErrInvalidSize, s)
	}
	return nil
}

// Options configures window generation.
type Options struct {
	Size Size
	Gap  Size
}

// DefaultOptions returns non-overlapping windows of DefaultSize bases.
func DefaultOptions() Options {
	return Options{Size: Absolute(DefaultSize), Gap: Absolute(DefaultGap)}
}

// Generate slides a window of opts.Size with opts.Gap bases between windows
// across seq from offset 0. A negative gap overlaps consecutive windows.
// Proportional sizes are resolved against len(seq).
func Generate(id, seq string, opts Options) ([]model.Window, error) {
	if err := opts.Size.validate(); err != nil {
		return nil, err
	}

	length := len(seq)
	size := opts.Size.Resolve(length)
	stride := size + opts.Gap.Resolve(length)
	if stride <= 0 {
		return nil, fmt.Errorf("%w: zero stride for %s (size %s, gap %s)", ErrInvalidSize, id, opts.Size, opts.Gap)
	}

	var windows []model.Window
	for start := 0; start < length; start += stride {
		end := min(start+size, length)
		if end-start < MinLength {
			continue
		}
		windows = append(windows, model.Window{
			ID:     model.WindowID(id, start, end),
			Parent: id,
			Start:  start,
			End:    end,
			Seq:    seq[start:end],
		})
	}
	return windows, nil
}
