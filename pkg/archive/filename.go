package archive

import "regexp"

// Snapshot files are named <yymmdd>_<hhmmss>_<suffix>.json. Only the first
// six digits matter here: they select the year/month archive folder.
var timestampedName = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})_\d{6}_.*\.json$`)

// extractArchiveDate maps a snapshot filename to the (year, month) pair used
// for folder placement. The two-digit year is assumed to be 21st century.
// A filename of any other shape yields ok=false and is routed to the root
// folder; that is an expected outcome, not an error.
func extractArchiveDate(filename string) (year, month string, ok bool) {
	m := timestampedName.FindStringSubmatch(filename)
	if m == nil {
		return "", "", false
	}

	return "20" + m[1], m[2], true
}
