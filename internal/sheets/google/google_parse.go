package google

import (
	"fmt"
	"strconv"
	"strings"

	ports "despesas/internal/sheets"
)

// findRow returns the 1-based sheet row whose first cell is id, skipping the
// header. Zero means not found.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if cellID(row[0]) == want {
			return i + 1
		}
	}
	return 0
}

// cellID normalizes an id cell. Formatted reads return "12", raw JSON
// numbers decode as 12 (float64).
func cellID(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// a1 builds an A1 range, quoting sheet names that need it.
func a1(sheet, cells string) string {
	return quoteSheet(sheet) + "!" + cells
}

func quoteSheet(name string) string {
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}

// rowRange spans every exported column of one row.
func rowRange(sheet string, row int) string {
	return a1(sheet, fmt.Sprintf("A%d:%s%d", row, lastColumn(), row))
}

// lastColumn is the letter of the final Header column.
func lastColumn() string {
	return columnLetter(len(ports.Header))
}

// columnLetter converts a 1-based column index to its letters (1=A, 27=AA).
func columnLetter(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
