package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"qadash/internal/errors"
	"qadash/pkg/contracts/domain"
)

// ProgramRow is one entry of the program master block.
type ProgramRow struct {
	Program    domain.ProgramID
	Department string
}

// EnrollmentRow carries the enrollment figures of one program for one year.
// A blank count cell stays invalid and is never read as zero.
type EnrollmentRow struct {
	Program domain.ProgramID
	Year    int
	New     domain.Int
	Total   domain.Int
}

// LabelCountRow is one tally entry of a categorical block (prior education,
// lecturer origin).
type LabelCountRow struct {
	Program domain.ProgramID
	Label   string
	Count   domain.Int
}

// SuccessRow carries the pre-aggregated completion figures of one program.
type SuccessRow struct {
	Program   domain.ProgramID
	Graduates domain.Int
	Cohort    domain.Int
}

// ProfileRow carries the per-program study profile averages.
type ProfileRow struct {
	Program        domain.ProgramID
	Semesters      domain.Float
	WorkExperience domain.Float
	StartingAge    domain.Float
}

// ModuleRow is one module of the roster, owned by one program.
type ModuleRow struct {
	Module   domain.ModuleID
	Owner    domain.ProgramID
	Capacity domain.Float
}

// ModuleEnrollmentRow counts the participants one program sends into one
// module.
type ModuleEnrollmentRow struct {
	Module       domain.ModuleID
	Program      domain.ProgramID
	Participants domain.Int
}

// Tables is the normalized per-category dataset extracted from one import
// workbook. It stays inside this package's pipeline; only computed views
// leave it.
type Tables struct {
	Programs         []ProgramRow
	Enrollment       []EnrollmentRow
	PriorEducation   []LabelCountRow
	Success          []SuccessRow
	StudyProfile     []ProfileRow
	LecturerOrigin   []LabelCountRow
	ModuleRoster     []ModuleRow
	ModuleEnrollment []ModuleEnrollmentRow
}

// Parser extracts the category tables from an import workbook. The fixed
// layout is validated against importLayout before any row is read.
type Parser struct {
	sheetName string
	logger    *slog.Logger
}

// NewParser creates a parser for the given sheet name.
func NewParser(sheetName string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{sheetName: sheetName, logger: logger}
}

// ParseFile reads the import workbook and extracts one table per data
// category. The file handle is released before any row is interpreted.
func (p *Parser) ParseFile(file domain.ImportFile) (*Tables, error) {
	f, err := excelize.OpenFile(file.Path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).
			WithContext("file", file.Path)
	}

	rows, err := f.GetRows(p.sheetName)
	closeErr := f.Close()
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("failed to read sheet %q", p.sheetName), err).
			WithContext("file", file.Path)
	}
	if closeErr != nil {
		p.logger.Warn("failed to close workbook", slog.String("error", closeErr.Error()))
	}

	if err := p.validateLayout(file.Path, rows); err != nil {
		return nil, err
	}

	tables, err := p.extractTables(file.Path, rows)
	if err != nil {
		return nil, err
	}

	p.logger.Info("parsed import workbook",
		slog.String("file", file.Path),
		slog.Int("year", file.Year),
		slog.Int("programs", len(tables.Programs)),
		slog.Int("enrollment_rows", len(tables.Enrollment)),
		slog.Int("modules", len(tables.ModuleRoster)))

	return tables, nil
}

// validateLayout checks every expected header label at its expected
// position. Any deviation is fatal; a best-effort parse of a shifted layout
// would silently corrupt every downstream metric.
func (p *Parser) validateLayout(file string, rows [][]string) error {
	if len(rows) == 0 {
		return errors.NewLayoutMismatchError(file, string(CategoryPrograms), "A1", "Studiengang", "").
			WithContext("reason", "sheet is empty")
	}
	for _, block := range importLayout {
		for _, col := range block.Columns {
			got := strings.TrimSpace(cellAt(rows, 0, col.Column))
			if got != col.Header {
				return errors.NewLayoutMismatchError(file, string(block.Category),
					cellRef(col.Column, 0), col.Header, got)
			}
		}
	}
	return nil
}

// extractTables walks all rows once, collecting each block's entries.
// Rows where a block's key cell is blank contribute nothing to that block.
func (p *Parser) extractTables(file string, rows [][]string) (*Tables, error) {
	t := &Tables{}

	for r := 1; r < len(rows); r++ {
		loc := location{file: file, row: r}

		if prog := keyAt(rows, r, CategoryPrograms); prog != "" {
			t.Programs = append(t.Programs, ProgramRow{
				Program:    domain.ProgramID(prog),
				Department: strings.TrimSpace(cellAt(rows, r, 1)),
			})
		}

		if prog := keyAt(rows, r, CategoryEnrollment); prog != "" {
			loc.category = CategoryEnrollment
			year, err := parseRequiredInt(cellAt(rows, r, 4), loc.at(4))
			if err != nil {
				return nil, err
			}
			newcomers, err := parseCount(cellAt(rows, r, 5), loc.at(5))
			if err != nil {
				return nil, err
			}
			total, err := parseCount(cellAt(rows, r, 6), loc.at(6))
			if err != nil {
				return nil, err
			}
			t.Enrollment = append(t.Enrollment, EnrollmentRow{
				Program: domain.ProgramID(prog),
				Year:    year,
				New:     newcomers,
				Total:   total,
			})
		}

		if prog := keyAt(rows, r, CategoryPriorEducation); prog != "" {
			loc.category = CategoryPriorEducation
			row, err := parseLabelCount(prog, rows, r, 9, loc)
			if err != nil {
				return nil, err
			}
			t.PriorEducation = append(t.PriorEducation, row)
		}

		if prog := keyAt(rows, r, CategorySuccess); prog != "" {
			loc.category = CategorySuccess
			graduates, err := parseCount(cellAt(rows, r, 13), loc.at(13))
			if err != nil {
				return nil, err
			}
			cohort, err := parseCount(cellAt(rows, r, 14), loc.at(14))
			if err != nil {
				return nil, err
			}
			t.Success = append(t.Success, SuccessRow{
				Program:   domain.ProgramID(prog),
				Graduates: graduates,
				Cohort:    cohort,
			})
		}

		if prog := keyAt(rows, r, CategoryStudyProfile); prog != "" {
			loc.category = CategoryStudyProfile
			semesters, err := parseFloat(cellAt(rows, r, 17), loc.at(17))
			if err != nil {
				return nil, err
			}
			experience, err := parseFloat(cellAt(rows, r, 18), loc.at(18))
			if err != nil {
				return nil, err
			}
			age, err := parseFloat(cellAt(rows, r, 19), loc.at(19))
			if err != nil {
				return nil, err
			}
			t.StudyProfile = append(t.StudyProfile, ProfileRow{
				Program:        domain.ProgramID(prog),
				Semesters:      semesters,
				WorkExperience: experience,
				StartingAge:    age,
			})
		}

		if prog := keyAt(rows, r, CategoryLecturerOrigin); prog != "" {
			loc.category = CategoryLecturerOrigin
			row, err := parseLabelCount(prog, rows, r, 22, loc)
			if err != nil {
				return nil, err
			}
			t.LecturerOrigin = append(t.LecturerOrigin, row)
		}

		if module := keyAt(rows, r, CategoryModuleRoster); module != "" {
			loc.category = CategoryModuleRoster
			capacity, err := parseFloat(cellAt(rows, r, 27), loc.at(27))
			if err != nil {
				return nil, err
			}
			t.ModuleRoster = append(t.ModuleRoster, ModuleRow{
				Module:   domain.ModuleID(module),
				Owner:    domain.ProgramID(strings.TrimSpace(cellAt(rows, r, 26))),
				Capacity: capacity,
			})
		}

		if module := keyAt(rows, r, CategoryModuleEnrollment); module != "" {
			loc.category = CategoryModuleEnrollment
			participants, err := parseCount(cellAt(rows, r, 31), loc.at(31))
			if err != nil {
				return nil, err
			}
			t.ModuleEnrollment = append(t.ModuleEnrollment, ModuleEnrollmentRow{
				Module:       domain.ModuleID(module),
				Program:      domain.ProgramID(strings.TrimSpace(cellAt(rows, r, 30))),
				Participants: participants,
			})
		}
	}

	return t, nil
}

// parseLabelCount reads one (label, count) tally row; labelCol is the
// block's label column, the count sits directly right of it.
func parseLabelCount(prog string, rows [][]string, r, labelCol int, loc location) (LabelCountRow, error) {
	count, err := parseCount(cellAt(rows, r, labelCol+1), loc.at(labelCol+1))
	if err != nil {
		return LabelCountRow{}, err
	}
	return LabelCountRow{
		Program: domain.ProgramID(prog),
		Label:   strings.TrimSpace(cellAt(rows, r, labelCol)),
		Count:   count,
	}, nil
}

// location pins a parse error to a file, category and cell.
type location struct {
	file     string
	category Category
	row      int
	col      int
}

// at returns a copy of the location pointing at the given column.
func (l location) at(col int) location {
	l.col = col
	return l
}

// parseError builds a coercion error carrying the offending file, category
// and A1-style cell reference.
func (l location) parseError(message string, cause error) error {
	return errors.NewParsingError(message, cause).
		WithContext("file", l.file).
		WithContext("category", string(l.category)).
		WithContext("cell", cellRef(l.col, l.row))
}

// keyAt returns the trimmed key cell of a category block in row r. A blank
// key means the block has no entry in this row.
func keyAt(rows [][]string, r int, category Category) string {
	block := layoutBlock(category)
	if len(block.Columns) == 0 {
		return ""
	}
	return strings.TrimSpace(cellAt(rows, r, block.Columns[0].Column))
}

// cellAt returns the raw cell value, or "" when the row is shorter than the
// requested column (excelize trims trailing blanks).
func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// cellRef converts zero-based coordinates to an A1-style reference.
func cellRef(col, row int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return fmt.Sprintf("col%d:row%d", col, row)
	}
	return fmt.Sprintf("%s%d", name, row+1)
}

// parseCount coerces a cell to a non-negative integer count. A blank cell
// is missing data, never zero.
func parseCount(raw string, loc location) (domain.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Int{}, nil
	}
	val, err := strconv.ParseFloat(normalizeDecimal(trimmed), 64)
	if err != nil {
		return domain.Int{}, loc.parseError(fmt.Sprintf("expected a count, got %q", raw), err)
	}
	if val != math.Trunc(val) {
		return domain.Int{}, loc.parseError(fmt.Sprintf("expected an integer count, got %q", raw), nil)
	}
	if val < 0 {
		return domain.Int{}, loc.parseError(fmt.Sprintf("count must not be negative, got %q", raw), nil)
	}
	return domain.SomeInt(int(val)), nil
}

// parseRequiredInt coerces a cell that is part of the row identity and may
// not be blank, such as the enrollment year.
func parseRequiredInt(raw string, loc location) (int, error) {
	v, err := parseCount(raw, loc)
	if err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, loc.parseError("required cell is blank", nil)
	}
	return v.Value, nil
}

// parseFloat coerces a cell to a float. Comma decimal separators are
// accepted, matching the source's locale. A blank cell is missing data.
func parseFloat(raw string, loc location) (domain.Float, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Float{}, nil
	}
	val, err := strconv.ParseFloat(normalizeDecimal(trimmed), 64)
	if err != nil {
		return domain.Float{}, loc.parseError(fmt.Sprintf("expected a number, got %q", raw), err)
	}
	return domain.SomeFloat(val), nil
}

// normalizeDecimal converts a comma decimal separator to a dot.
func normalizeDecimal(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}
