package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/worldexplorers/placement/internal/assessment"
)

func sampleResult(t *testing.T, name string) assessment.Result {
	t.Helper()
	sess := assessment.NewSession()
	sess.StudentName = name
	sess.CreatedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	sess.Notes = `says "hello", counts to ten`
	sess.Stage2Answers[assessment.SightWordsID] = assessment.SightWordChecklist{
		Checked: map[string]bool{"my": true, "is": true, "and": true},
	}
	sess.SpeakingScores["spk_1"] = assessment.TierExceeding
	sess.ReportDraft = assessment.GenerateReport(name, 1)
	return assessment.Finalize(sess)
}

func TestWriteCSV(t *testing.T) {
	r := sampleResult(t, "Mei Lin")
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []assessment.Result{r}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	wantHeader := []string{"ID", "Name", "Timestamp", "Level", "Team", "Score", "Notes"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	row := records[1]
	if row[1] != "Mei Lin" || row[2] != "2026-03-14" || row[3] != "1" || row[4] != "Happy Seed" || row[5] != "15" {
		t.Errorf("unexpected row: %v", row)
	}
	// Quotes inside notes survive CSV encoding.
	if row[6] != `says "hello", counts to ten` {
		t.Errorf("notes = %q", row[6])
	}
}

func TestWriteCSVEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Errorf("empty export should be header only, got %d lines", lines)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	in := []assessment.Result{sampleResult(t, "Mei"), sampleResult(t, "Leo")}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out []assessment.Result
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal backup: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Team != "Happy Seed" || out[0].TotalScore != in[0].TotalScore {
		t.Errorf("placement changed in backup: %+v", out[0])
	}
	sw, ok := out[0].Stage2Answers[assessment.SightWordsID].(assessment.SightWordChecklist)
	if !ok {
		t.Fatalf("sight words decoded as %T", out[0].Stage2Answers[assessment.SightWordsID])
	}
	if len(sw.Checked) != 3 {
		t.Errorf("sight word toggles lost: %v", sw.Checked)
	}
}

func TestWriteHTML(t *testing.T) {
	r := sampleResult(t, "Mei")
	r.PhotoURL = "photos/abc123.png"
	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	doc := buf.String()
	for _, want := range []string{
		"<title>Mei - Report</title>",
		"Happy Seed",
		"Pre-A1 Starters",
		"World Explorers Assessment Report 评估报告",
		`src="photos/abc123.png"`,
		"Archived on 2026-03-14",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestWriteHTMLWithoutPhoto(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, sampleResult(t, "Leo")); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if strings.Contains(buf.String(), "<img") {
		t.Error("photo block should be omitted when no photo is attached")
	}
}

func TestWriteHTMLEscapesName(t *testing.T) {
	r := sampleResult(t, `<script>alert("x")</script>`)
	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("student name must be HTML-escaped")
	}
}

func TestFileNames(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if got := CSVFileName(now); got != "explorers_data_2026-03-14.csv" {
		t.Errorf("CSVFileName = %q", got)
	}
	if got := JSONFileName(now); got != "explorers_full_backup_2026-03-14.json" {
		t.Errorf("JSONFileName = %q", got)
	}
	r := sampleResult(t, "Mei  Lin")
	if got := HTMLFileName(r); got != "report_mei_lin.html" {
		t.Errorf("HTMLFileName = %q", got)
	}
}
