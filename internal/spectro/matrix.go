package spectro

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// sectionMarker separates sections of a transport matrix file. The
// match is on the first four characters of the line only.
const sectionMarker = " ---"

// MatrixTerm is one term of the polynomial transport map: a coefficient
// per output channel (xptar, ytar, yptar, delta) and a small integer
// exponent per focal-plane input variable.
type MatrixTerm struct {
	Coeff [4]float64
	Exp   [5]int
}

// Matrix is the ordered list of transport terms read from a calibration
// file. It is immutable after loading and safe to share read-only across
// any number of events.
type Matrix struct {
	Terms []MatrixTerm
}

// NTerms returns the number of loaded terms.
func (m *Matrix) NTerms() int { return len(m.Terms) }

// LoadMatrix parses a transport matrix calibration file.
//
// The file format is line oriented: leading "!" comment lines, then a
// focal-plane rotation section that runs up to a " ---" marker and is
// ignored entirely, then one term per line until a closing " ---"
// marker. Each term line carries four whitespace-separated floating
// point coefficients followed by five adjacent single-digit exponents.
//
// In lenient mode (strict=false) a field that fails to scan simply
// leaves the rest of its term zero, matching the legacy Fortran-style
// readers this format comes from. In strict mode a malformed term line
// fails the load.
//
// An unopenable file, or end of file before the closing marker, returns
// an *InitError.
func LoadMatrix(path string, strict bool) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InitError{Op: "open transport matrix", Err: err}
	}
	defer f.Close()
	m, err := readMatrix(bufio.NewScanner(f), strict)
	if err != nil {
		return nil, &InitError{Op: "read transport matrix " + path, Err: err}
	}
	return m, nil
}

func readMatrix(sc *bufio.Scanner, strict bool) (*Matrix, error) {
	line, good := "!", true
	next := func() {
		if sc.Scan() {
			line = sc.Text()
		} else {
			good = false
		}
	}

	// Leading comment lines.
	for good && strings.HasPrefix(line, "!") {
		next()
	}
	// Focal-plane rotation section, up to its closing marker. Nothing
	// in it is used.
	for good && !strings.HasPrefix(line, sectionMarker) {
		next()
	}
	// Term lines up to the closing marker.
	m := &Matrix{Terms: make([]MatrixTerm, 0, 500)}
	for next(); good && !strings.HasPrefix(line, sectionMarker); next() {
		term, err := parseTerm(line, strict)
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", len(m.Terms)+1, err)
		}
		m.Terms = append(m.Terms, term)
	}
	if !good {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("file ends before closing marker")
	}
	return m, nil
}

// parseTerm scans one term line: four coefficients, then a run of five
// exponent digits with no separators. Lenient scanning stops at the
// first field that fails and leaves the remainder of the term zero.
func parseTerm(line string, strict bool) (MatrixTerm, error) {
	var t MatrixTerm
	fields := strings.Fields(line)
	for i := 0; i < 4; i++ {
		if i >= len(fields) {
			return t, termErr(strict, line, "missing coefficient")
		}
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return t, termErr(strict, line, "bad coefficient "+fields[i])
		}
		t.Coeff[i] = v
	}
	if len(fields) < 5 {
		return t, termErr(strict, line, "missing exponents")
	}
	digits := fields[4]
	for j := 0; j < 5; j++ {
		if j >= len(digits) || digits[j] < '0' || digits[j] > '9' {
			return t, termErr(strict, line, "bad exponent field "+digits)
		}
		t.Exp[j] = int(digits[j] - '0')
	}
	return t, nil
}

// termErr returns an error only in strict mode; lenient mode keeps the
// partially scanned term.
func termErr(strict bool, line, msg string) error {
	if strict {
		return fmt.Errorf("%s in %q", msg, line)
	}
	return nil
}
