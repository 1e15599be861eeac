// Package export renders finalized placement results as CSV, JSON, or
// a standalone bilingual HTML report. It only ever reads results;
// nothing here mutates a session.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/worldexplorers/placement/internal/assessment"
)

// WriteCSV writes the results collection as the flat archive table:
// one row per result with the placement summary and notes.
func WriteCSV(w io.Writer, results []assessment.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Timestamp", "Level", "Team", "Score", "Notes"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.ID,
			r.StudentName,
			r.CreatedAt.Format("2006-01-02"),
			strconv.Itoa(r.Level),
			r.Team,
			strconv.Itoa(r.TotalScore),
			r.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the full results collection as a pretty-printed
// JSON backup, answer payloads included.
func WriteJSON(w io.Writer, results []assessment.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// CSVFileName returns the dated archive file name.
func CSVFileName(now time.Time) string {
	return "explorers_data_" + now.Format("2006-01-02") + ".csv"
}

// JSONFileName returns the dated backup file name.
func JSONFileName(now time.Time) string {
	return "explorers_full_backup_" + now.Format("2006-01-02") + ".json"
}

// HTMLFileName returns the per-student offline report file name.
func HTMLFileName(r assessment.Result) string {
	name := strings.Join(strings.Fields(strings.ToLower(r.StudentName)), "_")
	return "report_" + name + ".html"
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Result.StudentName}} - Report</title>
<style>
  body { font-family: sans-serif; background: #f9fafb; padding: 40px; }
  .report-card { background: white; border-radius: 40px; box-shadow: 0 20px 50px rgba(0,0,0,0.05); overflow: hidden; max-width: 800px; margin: 0 auto; }
  .header { padding: 60px 40px; text-align: center; }
  .icon { font-size: 80px; margin-bottom: 20px; }
  .banner { font-size: 11px; font-weight: bold; text-transform: uppercase; letter-spacing: 0.4em; color: #9ca3af; }
  .team { font-size: 48px; font-weight: 900; margin: 10px 0; }
  .body { padding: 40px; }
  .summary { background: #f9fafb; padding: 30px; border-radius: 30px; white-space: pre-wrap; line-height: 1.6; }
  .photo { width: 100%; border-radius: 24px; margin-top: 30px; }
  .footer { text-align: center; font-size: 10px; color: #d1d5db; text-transform: uppercase; letter-spacing: 0.4em; margin-top: 40px; }
</style>
</head>
<body>
<div class="report-card">
  <div class="header">
    <div class="icon">{{.Team.Icon}}</div>
    <div class="banner">World Explorers Report</div>
    <h1 class="team">{{.Team.Name}}</h1>
    <p>{{.Result.StudentName}} · {{.Team.LevelName}} · {{.Team.Mapping}}</p>
  </div>
  <div class="body">
    <div class="summary">{{.Result.ReportDraft}}</div>
{{- if .Result.PhotoURL}}
    <img class="photo" src="{{.Result.PhotoURL}}" alt="evidence">
{{- end}}
    <div class="footer">Archived on {{.Archived}}</div>
  </div>
</div>
</body>
</html>
`))

// WriteHTML writes one result as a standalone offline report document.
func WriteHTML(w io.Writer, r assessment.Result) error {
	data := struct {
		Result   assessment.Result
		Team     assessment.Team
		Archived string
	}{
		Result:   r,
		Team:     assessment.TeamForLevel(r.Level),
		Archived: r.CreatedAt.Format("2006-01-02"),
	}
	return reportTmpl.Execute(w, data)
}
