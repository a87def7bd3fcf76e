// Package files resolves the source workbook for a pipeline run. The data
// directory holds yearly files named "Import <YYYY>" with a workbook
// extension; the newest embedded year wins and year ties are an error.
package files
