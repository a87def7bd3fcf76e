package dataprocessing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qadash/internal/errors"
	"qadash/pkg/contracts/domain"
)

func computeFixture(t *testing.T, workers int) *domain.Result {
	t.Helper()
	tables, err := parseFixture(t, nil)
	require.NoError(t, err)
	registry, err := BuildRegistry(tables)
	require.NoError(t, err)

	engine := NewEngine(nil, EngineConfig{Workers: workers})
	result, err := engine.Compute(context.Background(),
		domain.ImportFile{Path: "Import 2025.xlsx", Year: 2025}, tables, registry)
	require.NoError(t, err)
	return result
}

func TestEngine_EnrollmentSequences(t *testing.T) {
	result := computeFixture(t, 1)

	informatik := result.Views["B.Sc. Informatik"].Metrics
	require.Len(t, informatik.NewEnrollment, domain.EnrollmentWindow)
	assert.Equal(t, []domain.YearCount{
		{Year: 2022, Count: 40, Valid: true},
		{Year: 2023, Count: 45, Valid: true},
		{Year: 2024, Valid: false},
		{Year: 2025, Count: 50, Valid: true},
	}, informatik.NewEnrollment)
	assert.Equal(t, []domain.YearCount{
		{Year: 2022, Count: 120, Valid: true},
		{Year: 2023, Count: 130, Valid: true},
		{Year: 2024, Valid: false},
		{Year: 2025, Count: 150, Valid: true},
	}, informatik.TotalEnrollment)

	// Fewer than four source years pads the left with missing entries.
	bwl := result.Views["B.A. BWL"].Metrics
	assert.Equal(t, []domain.YearCount{
		{Year: 2022, Valid: false},
		{Year: 2023, Valid: false},
		{Year: 2024, Count: 30, Valid: true},
		{Year: 2025, Count: 35, Valid: true},
	}, bwl.NewEnrollment)

	// A present row with a blank cell stays a missing entry for that
	// figure only.
	ds := result.Views["M.Sc. Data Science"].Metrics
	assert.False(t, ds.NewEnrollment[3].Valid)
	assert.Equal(t, domain.YearCount{Year: 2025, Count: 60, Valid: true}, ds.TotalEnrollment[3])
}

func TestEngine_Distributions(t *testing.T) {
	result := computeFixture(t, 1)

	informatik := result.Views["B.Sc. Informatik"].Metrics
	assert.Equal(t, domain.Distribution{
		"Berufsausbildung": 20,
		"FOS":              40,
		"Gymnasium":        90,
	}, informatik.PriorEducation)

	// Fixed domain: labels a program never reports are present with zero.
	bwl := result.Views["B.A. BWL"].Metrics
	assert.Equal(t, domain.Distribution{
		"Berufsausbildung": 0,
		"FOS":              30,
		"Gymnasium":        70,
	}, bwl.PriorEducation)

	// Counts sum to the program's latest total enrollment.
	for _, program := range result.Programs {
		view := result.Views[program]
		latest := view.Metrics.TotalEnrollment[domain.EnrollmentWindow-1]
		require.True(t, latest.Valid, "fixture has a latest total for %s", program)
		assert.Equal(t, latest.Count, view.Metrics.PriorEducation.Total(),
			"prior education of %s", program)
	}

	assert.Equal(t, domain.Distribution{"Extern": 4, "Intern": 8}, informatik.LecturerOrigin)
	assert.Equal(t, domain.Distribution{"Extern": 0, "Intern": 5}, bwl.LecturerOrigin)
}

func TestEngine_SuccessRate(t *testing.T) {
	result := computeFixture(t, 1)

	assert.Equal(t, domain.SomeFloat(0.8), result.Views["B.Sc. Informatik"].Metrics.SuccessRate)
	// Zero cohort is missing data, never zero and never a division error.
	assert.False(t, result.Views["B.A. BWL"].Metrics.SuccessRate.Valid)
	// No success row at all is missing data too.
	assert.False(t, result.Views["M.Sc. Data Science"].Metrics.SuccessRate.Valid)
}

func TestEngine_SuccessRate_CompletionsExceedCohort(t *testing.T) {
	tables := &Tables{
		Programs: []ProgramRow{{Program: "B.Sc. Informatik"}},
		Success: []SuccessRow{
			{Program: "B.Sc. Informatik", Graduates: domain.SomeInt(120), Cohort: domain.SomeInt(100)},
		},
	}
	registry, err := BuildRegistry(tables)
	require.NoError(t, err)

	engine := NewEngine(nil, DefaultEngineConfig())
	_, err = engine.Compute(context.Background(), domain.ImportFile{Year: 2025}, tables, registry)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
}

func TestEngine_StudyProfile(t *testing.T) {
	result := computeFixture(t, 1)

	informatik := result.Views["B.Sc. Informatik"].Metrics
	assert.Equal(t, domain.SomeFloat(6.5), informatik.AvgSemesters)
	assert.Equal(t, domain.SomeFloat(2.0), informatik.AvgWorkExperience)
	assert.Equal(t, domain.SomeFloat(21.4), informatik.AvgStartingAge)

	ds := result.Views["M.Sc. Data Science"].Metrics
	assert.False(t, ds.AvgSemesters.Valid)
	assert.False(t, ds.AvgWorkExperience.Valid)
	assert.False(t, ds.AvgStartingAge.Valid)
}

func TestEngine_ModuleJoin(t *testing.T) {
	result := computeFixture(t, 1)

	informatik := result.Views["B.Sc. Informatik"].Metrics
	assert.Equal(t, map[domain.ModuleID]int{
		"Mathe 1":     30,
		"Datenbanken": 5,
	}, informatik.ModuleEnrollment)
	assert.Equal(t, map[domain.ModuleID]domain.Distribution{
		"Mathe 1":     {"B.Sc. Informatik": 30, "B.A. BWL": 15},
		"Datenbanken": {"B.Sc. Informatik": 5},
	}, informatik.ModuleOrigin)

	bwl := result.Views["B.A. BWL"].Metrics
	assert.Equal(t, map[domain.ModuleID]int{
		"Mathe 1":   15,
		"Statistik": 25,
	}, bwl.ModuleEnrollment)

	// Symmetry: every origin entry has the matching enrollment entry on
	// the participant's side.
	for _, program := range result.Programs {
		owner := result.Views[program]
		for module, dist := range owner.Metrics.ModuleOrigin {
			for home, count := range dist {
				participant := result.Views[domain.ProgramID(home)]
				assert.Equal(t, count, participant.Metrics.ModuleEnrollment[module],
					"origin %s/%s vs enrollment of %s", program, module, home)
			}
		}
	}
}

func TestEngine_AvgUtilization(t *testing.T) {
	result := computeFixture(t, 1)

	// "Mathe 1": 45 participants against capacity 30 is 150%. The owner's
	// second module has no usable capacity and is excluded from the mean.
	informatik := result.Views["B.Sc. Informatik"].Metrics
	require.True(t, informatik.AvgUtilization.Valid)
	assert.InDelta(t, 1.5, informatik.AvgUtilization.Value, 1e-9)

	bwl := result.Views["B.A. BWL"].Metrics
	require.True(t, bwl.AvgUtilization.Valid)
	assert.InDelta(t, 0.5, bwl.AvgUtilization.Value, 1e-9)

	// No owned module with a capacity figure: missing, not zero.
	ds := result.Views["M.Sc. Data Science"].Metrics
	assert.False(t, ds.AvgUtilization.Valid)
}

func TestEngine_ModuleCount(t *testing.T) {
	result := computeFixture(t, 1)

	assert.Equal(t, 2, result.Views["B.Sc. Informatik"].Metrics.ModuleCount)
	assert.Equal(t, 1, result.Views["B.A. BWL"].Metrics.ModuleCount)
	assert.Equal(t, 1, result.Views["M.Sc. Data Science"].Metrics.ModuleCount)
}

func TestEngine_ViewCarriesSource(t *testing.T) {
	result := computeFixture(t, 1)

	assert.Equal(t, 2025, result.SourceYear)
	view := result.Views["B.Sc. Informatik"]
	assert.Equal(t, domain.ProgramID("B.Sc. Informatik"), view.Program)
	assert.Equal(t, "Technik", view.Department)
	assert.Equal(t, 2025, view.SourceYear)
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	sequential := computeFixture(t, 1)
	parallel := computeFixture(t, 4)

	seqJSON, err := json.Marshal(sequential)
	require.NoError(t, err)
	parJSON, err := json.Marshal(parallel)
	require.NoError(t, err)

	assert.Equal(t, string(seqJSON), string(parJSON))
}
