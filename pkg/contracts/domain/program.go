package domain

// ProgramID identifies a degree program (Studiengang). It doubles as the
// display name on the dashboard page and is unique within one import file.
type ProgramID string

// ModuleID identifies an offered module, unique within the workbook.
// A module may draw participants from several programs.
type ModuleID string

// ImportFile is a resolved source workbook. It is resolved once per run
// and immutable afterwards.
type ImportFile struct {
	Path string `json:"path"`
	Year int    `json:"year"`
}
