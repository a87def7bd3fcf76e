package dataprocessing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const fixtureSheet = "Importtabelle"

// writeFixture builds a complete, layout-conforming import workbook and
// saves it under the given name. mutate, when set, may deface the file
// before saving to provoke structural errors.
func writeFixture(t *testing.T, dir, name string, mutate func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", fixtureSheet))

	set := func(cell string, value interface{}) {
		require.NoError(t, f.SetCellValue(fixtureSheet, cell, value))
	}

	// Program master (A-B).
	set("A1", "Studiengang")
	set("B1", "Fachbereich")
	set("A2", "B.Sc. Informatik")
	set("B2", "Technik")
	set("A3", "B.A. BWL")
	set("B3", "Wirtschaft")
	set("A4", "M.Sc. Data Science")
	set("B4", "Technik")

	// Enrollment (D-G), one row per program and year. B.Sc. Informatik has
	// no 2024 row; M.Sc. Data Science has a blank newcomer cell.
	set("D1", "Studiengang")
	set("E1", "Jahr")
	set("F1", "Studienanfänger")
	set("G1", "Immatrikulierte")
	set("D2", "B.Sc. Informatik")
	set("E2", 2022)
	set("F2", 40)
	set("G2", 120)
	set("D3", "B.Sc. Informatik")
	set("E3", 2023)
	set("F3", 45)
	set("G3", 130)
	set("D4", "B.Sc. Informatik")
	set("E4", 2025)
	set("F4", 50)
	set("G4", 150)
	set("D5", "B.A. BWL")
	set("E5", 2024)
	set("F5", 30)
	set("G5", 90)
	set("D6", "B.A. BWL")
	set("E6", 2025)
	set("F6", 35)
	set("G6", 100)
	set("D7", "M.Sc. Data Science")
	set("E7", 2025)
	set("G7", 60)

	// Prior education (I-K). Counts per program sum to its latest total
	// enrollment.
	set("I1", "Studiengang")
	set("J1", "Vorbildung")
	set("K1", "Anzahl")
	set("I2", "B.Sc. Informatik")
	set("J2", "Gymnasium")
	set("K2", 90)
	set("I3", "B.Sc. Informatik")
	set("J3", "FOS")
	set("K3", 40)
	set("I4", "B.Sc. Informatik")
	set("J4", "Berufsausbildung")
	set("K4", 20)
	set("I5", "B.A. BWL")
	set("J5", "Gymnasium")
	set("K5", 70)
	set("I6", "B.A. BWL")
	set("J6", "FOS")
	set("K6", 30)
	set("I7", "M.Sc. Data Science")
	set("J7", "Gymnasium")
	set("K7", 60)

	// Success figures (M-O). B.A. BWL has a zero cohort; M.Sc. Data
	// Science has no row at all.
	set("M1", "Studiengang")
	set("N1", "Absolventen")
	set("O1", "Kohorte")
	set("M2", "B.Sc. Informatik")
	set("N2", 80)
	set("O2", 100)
	set("M3", "B.A. BWL")
	set("O3", 0)

	// Study profile (Q-T), comma decimals as in the source files.
	set("Q1", "Studiengang")
	set("R1", "Fachsemester")
	set("S1", "Berufserfahrung")
	set("T1", "Alter")
	set("Q2", "B.Sc. Informatik")
	set("R2", "6,5")
	set("S2", "2,0")
	set("T2", "21,4")
	set("Q3", "B.A. BWL")
	set("S3", 1.5)
	set("T3", 20)

	// Lecturer origin (V-X).
	set("V1", "Studiengang")
	set("W1", "Herkunft")
	set("X1", "Anzahl")
	set("V2", "B.Sc. Informatik")
	set("W2", "Intern")
	set("X2", 8)
	set("V3", "B.Sc. Informatik")
	set("W3", "Extern")
	set("X3", 4)
	set("V4", "B.A. BWL")
	set("W4", "Intern")
	set("X4", 5)
	set("V5", "M.Sc. Data Science")
	set("W5", "Extern")
	set("X5", 3)

	// Module roster (Z-AB). "ML Grundlagen" has no capacity figure,
	// "Datenbanken" an unusable one.
	set("Z1", "Modul")
	set("AA1", "Studiengang")
	set("AB1", "Kapazität")
	set("Z2", "Mathe 1")
	set("AA2", "B.Sc. Informatik")
	set("AB2", 30)
	set("Z3", "Statistik")
	set("AA3", "B.A. BWL")
	set("AB3", 50)
	set("Z4", "ML Grundlagen")
	set("AA4", "M.Sc. Data Science")
	set("Z5", "Datenbanken")
	set("AA5", "B.Sc. Informatik")
	set("AB5", 0)

	// Module enrollment (AD-AF). "Mathe 1" is overbooked: 45 participants
	// against a capacity of 30.
	set("AD1", "Modul")
	set("AE1", "Studiengang")
	set("AF1", "Teilnehmer")
	set("AD2", "Mathe 1")
	set("AE2", "B.Sc. Informatik")
	set("AF2", 30)
	set("AD3", "Mathe 1")
	set("AE3", "B.A. BWL")
	set("AF3", 15)
	set("AD4", "Statistik")
	set("AE4", "B.A. BWL")
	set("AF4", 25)
	set("AD5", "ML Grundlagen")
	set("AE5", "M.Sc. Data Science")
	set("AF5", 10)
	set("AD6", "Datenbanken")
	set("AE6", "B.Sc. Informatik")
	set("AF6", 5)

	if mutate != nil {
		mutate(f)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}
