package dataprocessing

// Category identifies one fixed column block of the import sheet.
type Category string

const (
	CategoryPrograms         Category = "programs"
	CategoryEnrollment       Category = "enrollment"
	CategoryPriorEducation   Category = "prior_education"
	CategorySuccess          Category = "success"
	CategoryStudyProfile     Category = "study_profile"
	CategoryLecturerOrigin   Category = "lecturer_origin"
	CategoryModuleRoster     Category = "module_roster"
	CategoryModuleEnrollment Category = "module_enrollment"
)

// columnSpec pins one expected header label to its zero-based column index.
type columnSpec struct {
	Header string
	Column int
}

// blockSpec describes one category block. The header row is row 1; a blank
// key cell (the block's first column) means the block has no entry in that
// row. Blocks have independent lengths.
type blockSpec struct {
	Category Category
	Columns  []columnSpec
}

// importLayout is the declarative layout contract of the import sheet.
// Every header is validated at its expected position before any data row is
// read, so a relocated column surfaces as a layout error instead of feeding
// misaligned values into the metrics.
//
// Blocks are separated by one blank spacer column.
var importLayout = []blockSpec{
	{
		Category: CategoryPrograms,
		Columns: []columnSpec{
			{"Studiengang", 0},  // A
			{"Fachbereich", 1},  // B
		},
	},
	{
		Category: CategoryEnrollment,
		Columns: []columnSpec{
			{"Studiengang", 3},      // D
			{"Jahr", 4},             // E
			{"Studienanfänger", 5},  // F
			{"Immatrikulierte", 6},  // G
		},
	},
	{
		Category: CategoryPriorEducation,
		Columns: []columnSpec{
			{"Studiengang", 8},  // I
			{"Vorbildung", 9},   // J
			{"Anzahl", 10},      // K
		},
	},
	{
		Category: CategorySuccess,
		Columns: []columnSpec{
			{"Studiengang", 12},  // M
			{"Absolventen", 13},  // N
			{"Kohorte", 14},      // O
		},
	},
	{
		Category: CategoryStudyProfile,
		Columns: []columnSpec{
			{"Studiengang", 16},      // Q
			{"Fachsemester", 17},     // R
			{"Berufserfahrung", 18},  // S
			{"Alter", 19},            // T
		},
	},
	{
		Category: CategoryLecturerOrigin,
		Columns: []columnSpec{
			{"Studiengang", 21},  // V
			{"Herkunft", 22},     // W
			{"Anzahl", 23},       // X
		},
	},
	{
		Category: CategoryModuleRoster,
		Columns: []columnSpec{
			{"Modul", 25},        // Z
			{"Studiengang", 26},  // AA
			{"Kapazität", 27},    // AB
		},
	},
	{
		Category: CategoryModuleEnrollment,
		Columns: []columnSpec{
			{"Modul", 29},        // AD
			{"Studiengang", 30},  // AE
			{"Teilnehmer", 31},   // AF
		},
	},
}

// layoutBlock returns the block spec for a category.
func layoutBlock(category Category) blockSpec {
	for _, block := range importLayout {
		if block.Category == category {
			return block
		}
	}
	return blockSpec{}
}
