// Package colref converts between spreadsheet column letters and 1-based
// column indices, and parses cell addresses and ranges.
//
// Column letters use bijective base-26: "A" is 1, "Z" is 26, "AA" is 27 and
// the last column a sheet can hold is "XFD" (16384). All functions are pure.
package colref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/sheetq/internal/qerr"
)

const (
	// MaxColumnLetters is the last column identifier a sheet can hold.
	MaxColumnLetters = "XFD"

	// MaxColumnIndex is the 1-based index of MaxColumnLetters.
	MaxColumnIndex = 16384
)

var addressPattern = regexp.MustCompile(`^([A-Za-z]{1,3})([0-9]{1,7})$`)

// ToIndex converts column letters to a 1-based index. Letters are
// case-insensitive. The input is not validated; use CheckLetters first when
// it comes from a caller.
func ToIndex(letters string) int {
	letters = strings.ToUpper(letters)
	index := 0
	for i := 0; i < len(letters); i++ {
		index = index*26 + int(letters[i]-'A'+1)
	}
	return index
}

// FromIndex converts a 1-based index to column letters.
func FromIndex(index int) (string, error) {
	if index < 1 || index > MaxColumnIndex {
		return "", qerr.ColumnOutOfRange(strconv.Itoa(index),
			fmt.Sprintf("index must be between 1 and %d", MaxColumnIndex))
	}
	var buf [3]byte
	pos := len(buf)
	for index > 0 {
		index--
		pos--
		buf[pos] = byte('A' + index%26)
		index /= 26
	}
	return string(buf[pos:]), nil
}

// CheckLetters fails with ColumnOutOfRange unless letters is 1-3 characters
// in A-Z (either case) whose index does not exceed MaxColumnIndex.
func CheckLetters(letters string) error {
	if letters == "" || len(letters) > len(MaxColumnLetters) {
		return qerr.ColumnOutOfRange(letters, "expected 1 to 3 letters")
	}
	upper := strings.ToUpper(letters)
	for i := 0; i < len(upper); i++ {
		if upper[i] < 'A' || upper[i] > 'Z' {
			return qerr.ColumnOutOfRange(letters, "letters must be in A-Z")
		}
	}
	if ToIndex(upper) > MaxColumnIndex {
		return qerr.ColumnOutOfRange(letters, "beyond last column "+MaxColumnLetters)
	}
	return nil
}

// Address is a parsed cell address such as "B7".
type Address struct {
	Column string // upper-case column letters
	Row    int    // 1-based row number
}

// ParseAddress parses a cell address. The text must be 1-3 letters followed
// by 1-7 digits; anything else fails with InvalidRangeFormat.
func ParseAddress(text string) (Address, error) {
	m := addressPattern.FindStringSubmatch(text)
	if m == nil {
		return Address{}, qerr.InvalidRangeFormat(text)
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return Address{}, qerr.InvalidRangeFormat(text)
	}
	return Address{Column: strings.ToUpper(m[1]), Row: row}, nil
}

// ColumnIndex returns the 1-based column index of the address.
func (a Address) ColumnIndex() int {
	return ToIndex(a.Column)
}

// String returns the canonical upper-case form, e.g. "B7".
func (a Address) String() string {
	return a.Column + strconv.Itoa(a.Row)
}
