package domain

import "sort"

// Int is an integer value that keeps "no data" distinct from zero.
// Valid is false when the source cell was blank.
type Int struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// Float is a float value that keeps "no data" distinct from zero.
type Float struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// SomeInt returns a present Int.
func SomeInt(v int) Int { return Int{Value: v, Valid: true} }

// SomeFloat returns a present Float.
func SomeFloat(v float64) Float { return Float{Value: v, Valid: true} }

// EnrollmentWindow is the number of years in an enrollment sequence.
// Every sequence has exactly this many entries, padded with missing-data
// entries for years absent in the source.
const EnrollmentWindow = 4

// YearCount is one entry of a yearly enrollment sequence. Valid is false
// when the source has no figure for that year.
type YearCount struct {
	Year  int  `json:"year"`
	Count int  `json:"count"`
	Valid bool `json:"valid"`
}

// Distribution maps a categorical label (prior-education type, lecturer
// origin, home program) to a count. Domains are fixed per workbook: labels
// that never occur for a program are still present with count 0, so chart
// axes stay consistent across programs.
type Distribution map[string]int

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Labels returns the distribution's labels in sorted order.
func (d Distribution) Labels() []string {
	labels := make([]string, 0, len(d))
	for label := range d {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// MetricSet holds the twelve computed values for one program. Field order
// matches the fixed presentation order of the dashboard page.
type MetricSet struct {
	NewEnrollment     []YearCount              `json:"new_enrollment"`
	TotalEnrollment   []YearCount              `json:"total_enrollment"`
	PriorEducation    Distribution             `json:"prior_education"`
	SuccessRate       Float                    `json:"success_rate"`
	AvgSemesters      Float                    `json:"avg_semesters"`
	AvgWorkExperience Float                    `json:"avg_work_experience"`
	AvgStartingAge    Float                    `json:"avg_starting_age"`
	LecturerOrigin    Distribution             `json:"lecturer_origin"`
	ModuleEnrollment  map[ModuleID]int         `json:"module_enrollment"`
	ModuleOrigin      map[ModuleID]Distribution `json:"module_origin"`
	AvgUtilization    Float                    `json:"avg_utilization"`
	ModuleCount       int                      `json:"module_count"`
}

// MetricsView is the immutable per-program snapshot handed to the
// presentation layer. It carries the year of the import file the metrics
// were computed from.
type MetricsView struct {
	Program    ProgramID `json:"program"`
	Department string    `json:"department"`
	SourceYear int       `json:"source_year"`
	Metrics    MetricSet `json:"metrics"`
}

// Result is the full pipeline output: programs in navigation order plus one
// view per program. The presentation layer iterates Programs and renders
// Views[p], one page per entry.
type Result struct {
	SourceYear int                       `json:"source_year"`
	Programs   []ProgramID               `json:"programs"`
	Views      map[ProgramID]MetricsView `json:"views"`
}
