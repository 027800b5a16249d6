package numerology

import "sort"

// letterValues maps each lowercase letter to its numerology value.
// No letter maps to 9.
var letterValues = map[rune]int{
	'a': 1, 'i': 1, 'j': 1, 'q': 1, 'y': 1,
	'b': 2, 'k': 2, 'r': 2,
	'c': 3, 'g': 3, 'l': 3, 's': 3,
	'd': 4, 'm': 4, 't': 4,
	'e': 5, 'h': 5, 'n': 5, 'x': 5,
	'u': 6, 'v': 6, 'w': 6,
	'o': 7, 'z': 7,
	'f': 8, 'p': 8,
}

// ValueOf returns the value contributed by a single cleaned character.
// Digits contribute their literal value, including 0.
func ValueOf(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	v, ok := letterValues[r]
	return v, ok
}

// TableRow groups the letters sharing one value.
type TableRow struct {
	Value   int      `json:"value"`
	Letters []string `json:"letters"`
}

// Table returns the letter mapping grouped by value, ascending.
// Values without letters are omitted.
func Table() []TableRow {
	rows := make([]TableRow, 0, 8)
	for v := 1; v <= 9; v++ {
		letters := Letters(v)
		if len(letters) == 0 {
			continue
		}
		rows = append(rows, TableRow{Value: v, Letters: letters})
	}
	return rows
}

// Letters returns the upper-case letters that map to v, alphabetically.
func Letters(v int) []string {
	var letters []string
	for r, lv := range letterValues {
		if lv == v {
			letters = append(letters, string(r-'a'+'A'))
		}
	}
	sort.Strings(letters)
	return letters
}
