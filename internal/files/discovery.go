package files

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"qadash/internal/errors"
	"qadash/pkg/contracts/domain"
)

// importPrefix and the accepted workbook extensions define the fixed naming
// pattern of source files: "Import <YYYY>.xlsx".
const importPrefix = "Import "

var importExtensions = []string{".xlsx", ".xlsm", ".xls"}

// Locator resolves the newest import workbook in a data directory. The
// directory is only ever listed, never written.
type Locator struct {
	dataDir string
	logger  *slog.Logger
}

// NewLocator creates a locator for the given data directory.
func NewLocator(dataDir string, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{dataDir: dataDir, logger: logger}
}

// Discover returns all import workbooks in the data directory, sorted by
// embedded year ascending. Files not matching the naming pattern are
// ignored.
func (l *Locator) Discover() ([]domain.ImportFile, error) {
	entries, err := os.ReadDir(l.dataDir)
	if err != nil {
		return nil, errors.NewStorageError("failed to read data directory", err).
			WithContext("directory", l.dataDir)
	}

	var imports []domain.ImportFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		year, ok := parseImportYear(entry.Name())
		if !ok {
			continue
		}
		imports = append(imports, domain.ImportFile{
			Path: filepath.Join(l.dataDir, entry.Name()),
			Year: year,
		})
	}

	sort.Slice(imports, func(i, j int) bool {
		return imports[i].Year < imports[j].Year
	})

	return imports, nil
}

// Latest returns the import file with the strictly maximal embedded year.
// Two files claiming the same year are never silently resolved.
func (l *Locator) Latest() (domain.ImportFile, error) {
	imports, err := l.Discover()
	if err != nil {
		return domain.ImportFile{}, err
	}
	if len(imports) == 0 {
		return domain.ImportFile{}, errors.NewSourceNotFoundError(l.dataDir, importPrefix+"<YYYY>"+importExtensions[0])
	}

	latest := imports[len(imports)-1]
	var duplicates []string
	for _, imp := range imports {
		if imp.Year == latest.Year {
			duplicates = append(duplicates, imp.Path)
		}
	}
	if len(duplicates) > 1 {
		return domain.ImportFile{}, errors.NewAmbiguousYearError(latest.Year, duplicates)
	}

	l.logger.Info("resolved import workbook",
		slog.String("path", latest.Path),
		slog.Int("year", latest.Year),
		slog.Int("candidates", len(imports)))

	return latest, nil
}

// parseImportYear extracts the embedded year from a filename matching the
// import naming pattern. Returns false for any other filename.
func parseImportYear(name string) (int, bool) {
	if !strings.HasPrefix(name, importPrefix) {
		return 0, false
	}
	rest := strings.TrimPrefix(name, importPrefix)

	var ext string
	for _, e := range importExtensions {
		if strings.HasSuffix(rest, e) {
			ext = e
			break
		}
	}
	if ext == "" {
		return 0, false
	}

	yearStr := strings.TrimSuffix(rest, ext)
	if len(yearStr) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
