package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"qadash/internal/errors"
	"qadash/pkg/contracts/domain"
)

// EngineConfig holds metric computation options.
type EngineConfig struct {
	// Workers bounds the per-program fan-out. Programs share no mutable
	// state, so results are identical for any worker count.
	Workers int
}

// DefaultEngineConfig returns the sequential configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Workers: 1}
}

// Engine computes the twelve per-program metrics from the parsed tables.
type Engine struct {
	logger  *slog.Logger
	workers int
}

// NewEngine creates a metrics engine.
func NewEngine(logger *slog.Logger, cfg EngineConfig) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{logger: logger, workers: cfg.Workers}
}

// Compute builds one MetricsView per registry program. The registry order
// is preserved in the result; for a fixed input the output is reproducible
// bit for bit, sequentially or in parallel.
func (e *Engine) Compute(ctx context.Context, source domain.ImportFile, t *Tables, programs []domain.ProgramID) (*domain.Result, error) {
	idx := buildIndex(t)
	views := make([]domain.MetricsView, len(programs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, program := range programs {
		i, program := i, program
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			view, err := e.computeView(idx, source, program)
			if err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.Result{
		SourceYear: source.Year,
		Programs:   programs,
		Views:      make(map[domain.ProgramID]domain.MetricsView, len(views)),
	}
	for _, view := range views {
		result.Views[view.Program] = view
	}

	e.logger.Info("computed program metrics",
		slog.Int("programs", len(programs)),
		slog.Int("source_year", source.Year),
		slog.Int("workers", e.workers))

	return result, nil
}

// tableIndex holds the per-program and per-module lookups the metric
// computations read from. Built once per run, read-only afterwards.
type tableIndex struct {
	department     map[domain.ProgramID]string
	enrollment     map[domain.ProgramID]map[int]EnrollmentRow
	priorEducation map[domain.ProgramID][]LabelCountRow
	priorDomain    []string
	success        map[domain.ProgramID]SuccessRow
	profile        map[domain.ProgramID]ProfileRow
	lecturer       map[domain.ProgramID][]LabelCountRow
	lecturerDomain []string
	ownedModules   map[domain.ProgramID][]domain.ModuleID
	capacity       map[domain.ModuleID]domain.Float
	participants   map[domain.ModuleID]map[domain.ProgramID]int
	participation  map[domain.ProgramID]map[domain.ModuleID]int
}

func buildIndex(t *Tables) *tableIndex {
	idx := &tableIndex{
		department:     make(map[domain.ProgramID]string),
		enrollment:     make(map[domain.ProgramID]map[int]EnrollmentRow),
		priorEducation: make(map[domain.ProgramID][]LabelCountRow),
		success:        make(map[domain.ProgramID]SuccessRow),
		profile:        make(map[domain.ProgramID]ProfileRow),
		lecturer:       make(map[domain.ProgramID][]LabelCountRow),
		ownedModules:   make(map[domain.ProgramID][]domain.ModuleID),
		capacity:       make(map[domain.ModuleID]domain.Float),
		participants:   make(map[domain.ModuleID]map[domain.ProgramID]int),
		participation:  make(map[domain.ProgramID]map[domain.ModuleID]int),
	}

	for _, row := range t.Programs {
		idx.department[row.Program] = row.Department
	}
	for _, row := range t.Enrollment {
		years := idx.enrollment[row.Program]
		if years == nil {
			years = make(map[int]EnrollmentRow)
			idx.enrollment[row.Program] = years
		}
		years[row.Year] = row
	}
	for _, row := range t.PriorEducation {
		idx.priorEducation[row.Program] = append(idx.priorEducation[row.Program], row)
	}
	idx.priorDomain = labelDomain(t.PriorEducation)
	for _, row := range t.Success {
		idx.success[row.Program] = row
	}
	for _, row := range t.StudyProfile {
		idx.profile[row.Program] = row
	}
	for _, row := range t.LecturerOrigin {
		idx.lecturer[row.Program] = append(idx.lecturer[row.Program], row)
	}
	idx.lecturerDomain = labelDomain(t.LecturerOrigin)

	for _, row := range t.ModuleRoster {
		idx.ownedModules[row.Owner] = append(idx.ownedModules[row.Owner], row.Module)
		idx.capacity[row.Module] = row.Capacity
	}
	for _, row := range t.ModuleEnrollment {
		if !row.Participants.Valid {
			// A blank participant cell is missing data, not zero; it
			// contributes nothing to either side of the join.
			continue
		}
		byProgram := idx.participants[row.Module]
		if byProgram == nil {
			byProgram = make(map[domain.ProgramID]int)
			idx.participants[row.Module] = byProgram
		}
		byProgram[row.Program] += row.Participants.Value

		byModule := idx.participation[row.Program]
		if byModule == nil {
			byModule = make(map[domain.ModuleID]int)
			idx.participation[row.Program] = byModule
		}
		byModule[row.Module] += row.Participants.Value
	}

	return idx
}

// labelDomain returns the sorted union of labels across all programs. The
// distributions are fixed-domain: every program reports every label, with
// zero counts where it never occurs, so chart axes line up across pages.
func labelDomain(rows []LabelCountRow) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		if row.Label != "" {
			seen[row.Label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// computeView computes the full metric set for one program.
func (e *Engine) computeView(idx *tableIndex, source domain.ImportFile, program domain.ProgramID) (domain.MetricsView, error) {
	successRate, err := successRate(idx, program)
	if err != nil {
		return domain.MetricsView{}, err
	}

	profile := idx.profile[program]

	metrics := domain.MetricSet{
		NewEnrollment:     enrollmentSequence(idx, source, program, func(r EnrollmentRow) domain.Int { return r.New }),
		TotalEnrollment:   enrollmentSequence(idx, source, program, func(r EnrollmentRow) domain.Int { return r.Total }),
		PriorEducation:    tally(idx.priorDomain, idx.priorEducation[program]),
		SuccessRate:       successRate,
		AvgSemesters:      profile.Semesters,
		AvgWorkExperience: profile.WorkExperience,
		AvgStartingAge:    profile.StartingAge,
		LecturerOrigin:    tally(idx.lecturerDomain, idx.lecturer[program]),
		ModuleEnrollment:  moduleEnrollment(idx, program),
		ModuleOrigin:      moduleOrigin(idx, program),
		AvgUtilization:    avgUtilization(idx, program),
		ModuleCount:       len(idx.ownedModules[program]),
	}

	return domain.MetricsView{
		Program:    program,
		Department: idx.department[program],
		SourceYear: source.Year,
		Metrics:    metrics,
	}, nil
}

// enrollmentSequence builds the four-year window for one program,
// chronological and most-recent-last. The window is anchored at the most
// recent year the program has a row for; with no rows at all it falls back
// to the import year. Absent years stay as missing-data entries, never as
// zeros.
func enrollmentSequence(idx *tableIndex, source domain.ImportFile, program domain.ProgramID, pick func(EnrollmentRow) domain.Int) []domain.YearCount {
	years := idx.enrollment[program]

	anchor := source.Year
	if len(years) > 0 {
		anchor = 0
		for year := range years {
			if year > anchor {
				anchor = year
			}
		}
	}

	seq := make([]domain.YearCount, 0, domain.EnrollmentWindow)
	for year := anchor - domain.EnrollmentWindow + 1; year <= anchor; year++ {
		entry := domain.YearCount{Year: year}
		if row, ok := years[year]; ok {
			if v := pick(row); v.Valid {
				entry.Count = v.Value
				entry.Valid = true
			}
		}
		seq = append(seq, entry)
	}
	return seq
}

// tally folds a program's label rows into a fixed-domain distribution.
// Rows with a blank count leave the label at zero.
func tally(labels []string, rows []LabelCountRow) domain.Distribution {
	dist := make(domain.Distribution, len(labels))
	for _, label := range labels {
		dist[label] = 0
	}
	for _, row := range rows {
		if row.Label == "" || !row.Count.Valid {
			continue
		}
		dist[row.Label] += row.Count.Value
	}
	return dist
}

// successRate divides completions by cohort size. A zero or missing cohort
// yields missing data, never zero and never an arithmetic error. A cohort
// smaller than its completions is a data-integrity failure.
func successRate(idx *tableIndex, program domain.ProgramID) (domain.Float, error) {
	row, ok := idx.success[program]
	if !ok || !row.Graduates.Valid || !row.Cohort.Valid || row.Cohort.Value == 0 {
		return domain.Float{}, nil
	}
	if row.Graduates.Value > row.Cohort.Value {
		return domain.Float{}, errors.NewParsingError(
			fmt.Sprintf("program %q reports %d completions for a cohort of %d",
				program, row.Graduates.Value, row.Cohort.Value), nil).
			WithContext("category", string(CategorySuccess)).
			WithContext("program", string(program))
	}
	return domain.SomeFloat(float64(row.Graduates.Value) / float64(row.Cohort.Value)), nil
}

// moduleEnrollment reports, per module taken by this program's students,
// how many of them participate.
func moduleEnrollment(idx *tableIndex, program domain.ProgramID) map[domain.ModuleID]int {
	taken := idx.participation[program]
	out := make(map[domain.ModuleID]int, len(taken))
	for module, count := range taken {
		out[module] = count
	}
	return out
}

// moduleOrigin reports, per module owned by this program, the distribution
// of participants' home programs. It is the symmetric inverse of
// moduleEnrollment: owner.ModuleOrigin[m][p] == p.ModuleEnrollment[m].
func moduleOrigin(idx *tableIndex, program domain.ProgramID) map[domain.ModuleID]domain.Distribution {
	owned := idx.ownedModules[program]
	out := make(map[domain.ModuleID]domain.Distribution, len(owned))
	for _, module := range owned {
		dist := make(domain.Distribution, len(idx.participants[module]))
		for home, count := range idx.participants[module] {
			dist[string(home)] = count
		}
		out[module] = dist
	}
	return out
}

// avgUtilization averages participant count over capacity across the
// program's own modules. Modules without a usable capacity are excluded
// from the mean, not counted as zero; the mean is unweighted. The value is
// a fraction and exceeds 1 for overbooked modules.
func avgUtilization(idx *tableIndex, program domain.ProgramID) domain.Float {
	var sum float64
	var n int
	for _, module := range idx.ownedModules[program] {
		capacity := idx.capacity[module]
		if !capacity.Valid || capacity.Value <= 0 {
			continue
		}
		var participants int
		for _, count := range idx.participants[module] {
			participants += count
		}
		sum += float64(participants) / capacity.Value
		n++
	}
	if n == 0 {
		return domain.Float{}
	}
	return domain.SomeFloat(sum / float64(n))
}
