package dataprocessing

import (
	"qadash/internal/errors"
	"qadash/pkg/contracts/domain"
)

// BuildRegistry derives the ordered, de-duplicated list of programs from
// the parsed tables. First-seen order across the non-module tables is
// preserved; it becomes the sidebar order of the presentation layer.
//
// Module rows referencing a program unknown to every enrollment table are a
// data-integrity failure and abort the run: the presentation layer indexes
// pages by this registry, so a dangling reference can never be dropped
// silently.
func BuildRegistry(t *Tables) ([]domain.ProgramID, error) {
	var order []domain.ProgramID
	seen := make(map[domain.ProgramID]struct{})

	add := func(p domain.ProgramID) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		order = append(order, p)
	}

	for _, row := range t.Programs {
		add(row.Program)
	}
	for _, row := range t.Enrollment {
		add(row.Program)
	}
	for _, row := range t.PriorEducation {
		add(row.Program)
	}
	for _, row := range t.Success {
		add(row.Program)
	}
	for _, row := range t.StudyProfile {
		add(row.Program)
	}
	for _, row := range t.LecturerOrigin {
		add(row.Program)
	}

	// Cross-table consistency: module tables may only reference known
	// programs and modules.
	knownModules := make(map[domain.ModuleID]struct{}, len(t.ModuleRoster))
	for i, row := range t.ModuleRoster {
		if _, ok := seen[row.Owner]; !ok {
			return nil, errors.NewUnknownProgramError(string(CategoryModuleRoster), i+1, string(row.Owner))
		}
		if _, dup := knownModules[row.Module]; dup {
			return nil, errors.NewParsingError("duplicate module in roster", nil).
				WithContext("category", string(CategoryModuleRoster)).
				WithContext("module", string(row.Module))
		}
		knownModules[row.Module] = struct{}{}
	}
	for i, row := range t.ModuleEnrollment {
		if _, ok := seen[row.Program]; !ok {
			return nil, errors.NewUnknownProgramError(string(CategoryModuleEnrollment), i+1, string(row.Program))
		}
		if _, ok := knownModules[row.Module]; !ok {
			return nil, errors.NewUnknownModuleError(i+1, string(row.Module))
		}
	}

	return order, nil
}

// FilterPrograms removes hidden programs from a registry without touching
// the original order. Hiding happens after consistency checks, so a hidden
// program still participates in cross-table validation and module joins.
func FilterPrograms(programs []domain.ProgramID, hidden []string) []domain.ProgramID {
	if len(hidden) == 0 {
		return programs
	}
	hiddenSet := make(map[domain.ProgramID]struct{}, len(hidden))
	for _, h := range hidden {
		hiddenSet[domain.ProgramID(h)] = struct{}{}
	}

	filtered := make([]domain.ProgramID, 0, len(programs))
	for _, p := range programs {
		if _, ok := hiddenSet[p]; !ok {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
