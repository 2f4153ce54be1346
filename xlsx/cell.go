package xlsx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeString indicates a string value.
	CellTypeString CellType = iota
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeFormula indicates a formula without a cached value.
	CellTypeFormula
	// CellTypeError indicates an error value such as #DIV/0!.
	CellTypeError
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeFormula:
		return "formula"
	case CellTypeError:
		return "error"
	case CellTypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Cell is one populated cell of a worksheet.
type Cell struct {
	Value   string
	Type    CellType
	Formula string

	// Set on the top-left cell of a merged region.
	RowSpan, ColSpan int
}

// Sheet holds the populated cells of one worksheet, keyed by 0-indexed
// position.
type Sheet struct {
	Name   string
	Hidden bool

	cells   map[[2]int]*Cell
	covered map[[2]int]bool // non-root cells of merged regions
}

func newSheet(name string) *Sheet {
	return &Sheet{Name: name, cells: make(map[[2]int]*Cell), covered: make(map[[2]int]bool)}
}

// Cell returns the cell at row, col, or nil.
func (s *Sheet) Cell(row, col int) *Cell { return s.cells[[2]int{row, col}] }

func (s *Sheet) set(row, col int, c *Cell) { s.cells[[2]int{row, col}] = c }

// merge records a merged region, dropping the values of its non-root cells.
func (s *Sheet) merge(startRow, startCol, endRow, endCol int) {
	if endRow < startRow || endCol < startCol {
		return
	}
	root := s.Cell(startRow, startCol)
	if root == nil {
		root = &Cell{Type: CellTypeEmpty}
		s.set(startRow, startCol, root)
	}
	root.RowSpan = endRow - startRow + 1
	root.ColSpan = endCol - startCol + 1
	for r := startRow; r <= endRow; r++ {
		for c := startCol; c <= endCol; c++ {
			if r == startRow && c == startCol {
				continue
			}
			s.covered[[2]int{r, c}] = true
			delete(s.cells, [2]int{r, c})
		}
	}
}

// layout returns the rows holding at least one non-empty cell, in order,
// and the column bounds of the non-empty cells.
func (s *Sheet) layout() (rows []int, minCol, maxCol int) {
	minCol, maxCol = -1, -1
	seen := make(map[int]bool)
	for pos, c := range s.cells {
		if c.Value == "" {
			continue
		}
		if !seen[pos[0]] {
			seen[pos[0]] = true
			rows = append(rows, pos[0])
		}
		if minCol < 0 || pos[1] < minCol {
			minCol = pos[1]
		}
		if pos[1] > maxCol {
			maxCol = pos[1]
		}
	}
	sort.Ints(rows)
	return rows, minCol, maxCol
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference: no column letters")
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference: no row number")
	}

	col = ColumnToIndex(ref[:i])
	if col < 0 {
		return 0, 0, fmt.Errorf("invalid column: %s", ref[:i])
	}
	rowNum, err := strconv.Atoi(ref[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row: %s", ref[i:])
	}
	return col, rowNum - 1, nil
}

// ColumnToIndex converts column letters to a 0-indexed column number:
// A=0, Z=25, AA=26.
func ColumnToIndex(col string) int {
	col = strings.ToUpper(col)
	result := 0
	for _, c := range col {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// ParseRangeRef parses a range reference like "A1:D10" into start and end coordinates.
func ParseRangeRef(ref string) (startCol, startRow, endCol, endRow int, err error) {
	from, to, ok := strings.Cut(ref, ":")
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("invalid range reference: %s", ref)
	}
	startCol, startRow, err = ParseCellRef(from)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid start cell: %w", err)
	}
	endCol, endRow, err = ParseCellRef(to)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid end cell: %w", err)
	}
	return startCol, startRow, endCol, endRow, nil
}
