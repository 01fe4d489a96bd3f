package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EMU conversion factors used by Office Open XML documents
const (
	EMUsPerInch       = 914400
	EMUsPerCentimeter = 360000
	EMUsPerPoint      = 12700
)

// Length is a distance in English Metric Units
type Length int64

// Inches converts inches to a Length, truncating toward zero
func Inches(in float64) Length {
	return Length(in * EMUsPerInch)
}

// Centimeters converts centimeters to a Length, truncating toward zero
func Centimeters(cm float64) Length {
	return Length(cm * EMUsPerCentimeter)
}

// Points converts typographic points to a Length, truncating toward zero
func Points(pt float64) Length {
	return Length(pt * EMUsPerPoint)
}

// Inches returns the length in inches
func (l Length) Inches() float64 {
	return float64(l) / EMUsPerInch
}

// Centimeters returns the length in centimeters
func (l Length) Centimeters() float64 {
	return float64(l) / EMUsPerCentimeter
}

// Points returns the length in points
func (l Length) Points() float64 {
	return float64(l) / EMUsPerPoint
}

func (l Length) String() string {
	return strconv.FormatInt(int64(l), 10) + "emu"
}

// Unit describes how a child's size along the split axis is derived.
//
// Resolution happens in two passes (see ResolveLengthSpan): absolute and
// ratio units are resolved first against the parent size, then weights share
// whatever is left.
type Unit interface {
	Resolve(parent, available Length, totalWeights float64) (Length, error)
	String() string
}

// Inch is an absolute length in inches
type Inch float64

func (u Inch) Resolve(_, _ Length, _ float64) (Length, error) {
	return Inches(float64(u)), nil
}

func (u Inch) String() string { return formatFloat(float64(u)) + "in" }

// Centimeter is an absolute length in centimeters
type Centimeter float64

func (u Centimeter) Resolve(_, _ Length, _ float64) (Length, error) {
	return Centimeters(float64(u)), nil
}

func (u Centimeter) String() string { return formatFloat(float64(u)) + "cm" }

// Point is an absolute length in typographic points
type Point float64

func (u Point) Resolve(_, _ Length, _ float64) (Length, error) {
	return Points(float64(u)), nil
}

func (u Point) String() string { return formatFloat(float64(u)) + "pt" }

// EMU is an absolute length already expressed in EMUs
type EMU int64

func (u EMU) Resolve(_, _ Length, _ float64) (Length, error) {
	return Length(u), nil
}

func (u EMU) String() string { return strconv.FormatInt(int64(u), 10) + "emu" }

// Ratio is a fraction of the parent size, 0 <= ratio <= 1
type Ratio float64

// NewRatio validates and returns a Ratio
func NewRatio(r float64) (Ratio, error) {
	if !(r >= 0 && r <= 1) {
		return 0, fmt.Errorf("ratio must be between 0 and 1, got %v", r)
	}
	return Ratio(r), nil
}

func (u Ratio) Resolve(parent, _ Length, _ float64) (Length, error) {
	if !(u >= 0 && u <= 1) {
		return 0, fmt.Errorf("ratio must be between 0 and 1, got %v", float64(u))
	}
	return Length(float64(parent) * float64(u)), nil
}

func (u Ratio) String() string { return formatFloat(float64(u)*100) + "%" }

// Weight is a share of the space left after absolute and ratio units
type Weight float64

// NewWeight validates and returns a Weight
func NewWeight(w float64) (Weight, error) {
	if !(w > 0) || math.IsInf(w, 1) {
		return 0, fmt.Errorf("weight must be positive, got %v", w)
	}
	return Weight(w), nil
}

// Auto takes an equal share of the remaining space
func Auto() Weight {
	return Weight(1)
}

func (u Weight) Resolve(_, available Length, totalWeights float64) (Length, error) {
	if !(u > 0) || math.IsInf(float64(u), 1) {
		return 0, fmt.Errorf("weight must be positive, got %v", float64(u))
	}
	if totalWeights <= 0 {
		return 0, fmt.Errorf("total weights must be > 0 when weight units are present")
	}
	return Length(float64(available) * float64(u) / totalWeights), nil
}

func (u Weight) String() string {
	if u == 1 {
		return "auto"
	}
	return formatFloat(float64(u)) + "fr"
}

// ResolveLengthSpan resolves a sequence of specs into absolute sizes that
// share total along one axis.
func ResolveLengthSpan(specs []Unit, total Length) ([]Length, error) {
	var fixed Length
	var totalWeights float64

	for _, spec := range specs {
		if w, ok := spec.(Weight); ok {
			totalWeights += float64(w)
			continue
		}
		size, err := spec.Resolve(total, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", spec, err)
		}
		fixed += size
	}

	available := total - fixed
	if available < 0 {
		return nil, NewOverflowError(fmt.Sprintf(
			"layout overspecified by %d EMUs (parent size: %d, specs: %s)",
			-available, total, formatSpecs(specs)))
	}

	resolved := make([]Length, 0, len(specs))
	for _, spec := range specs {
		size, err := spec.Resolve(total, available, totalWeights)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", spec, err)
		}
		resolved = append(resolved, size)
	}
	return resolved, nil
}

// ParseUnit parses a textual length such as "1.5in", "2cm", "12pt",
// "914400emu", "30%", "auto", "2fr" or "2*".
func ParseUnit(s string) (Unit, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return nil, fmt.Errorf("empty length")
	}
	if v == "auto" {
		return Auto(), nil
	}

	suffixes := []string{"emu", "in", "cm", "pt", "fr", "%", "*"}
	for _, suffix := range suffixes {
		if !strings.HasSuffix(v, suffix) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(v, suffix))
		if suffix == "emu" {
			n, err := strconv.ParseInt(num, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid length %q: %w", s, err)
			}
			return EMU(n), nil
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid length %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid length %q: not a finite number", s)
		}
		switch suffix {
		case "in":
			return Inch(f), nil
		case "cm":
			return Centimeter(f), nil
		case "pt":
			return Point(f), nil
		case "%":
			return NewRatio(f / 100)
		default:
			return NewWeight(f)
		}
	}
	return nil, fmt.Errorf("invalid length %q: missing unit (in, cm, pt, emu, %%, fr or auto)", s)
}

// ParseLength parses an absolute textual length into EMUs
func ParseLength(s string) (Length, error) {
	u, err := ParseUnit(s)
	if err != nil {
		return 0, err
	}
	switch u.(type) {
	case Ratio, Weight:
		return 0, fmt.Errorf("length %q must be absolute", s)
	}
	return u.Resolve(0, 0, 0)
}

func formatSpecs(specs []Unit) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
