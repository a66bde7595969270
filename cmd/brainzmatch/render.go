package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/brainzmatch/internal/batch"
	"github.com/sydlexius/brainzmatch/internal/catalog"
	"github.com/sydlexius/brainzmatch/internal/match"
)

func renderReport(rep *batch.Report) string {
	rows := [][]string{
		{"Identities selected", strconv.Itoa(rep.Total)},
		{"Processed", strconv.Itoa(rep.Processed)},
		{"Skipped", strconv.Itoa(rep.Skipped)},
		{"Releases matched", strconv.Itoa(rep.ReleasesMatched)},
		{"Recordings matched", strconv.Itoa(rep.RecordingsMatched)},
		{"Keys added", strconv.Itoa(rep.KeysAdded)},
		{"Chords keys added", strconv.Itoa(rep.ChordsKeysAdded)},
		{"BPM added", strconv.Itoa(rep.BPMAdded)},
		{"Back-fill warnings", strconv.Itoa(rep.BackfillWarnings)},
		{"No analysis yet", strconv.Itoa(rep.NoAnalysis)},
		{"Not found errors", strconv.Itoa(rep.NotFoundErrors)},
		{"Service unavailable", strconv.Itoa(rep.Unavailable)},
		{"Database errors", strconv.Itoa(rep.DBErrors)},
	}
	out := renderTable([]string{"Run " + shortID(rep.RunID), "Count"}, rows, []columnAlignment{alignLeft, alignRight})

	var b strings.Builder
	b.WriteString(out)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Finished in %s\n", rep.Duration().Round(time.Millisecond))
	for _, hint := range rep.Guidance() {
		b.WriteString("  * " + hint + "\n")
	}
	return b.String()
}

func renderResult(t match.Target, res match.Result) string {
	rows := [][]string{
		{"Discogs release", strconv.FormatInt(t.ReleaseID, 10)},
		{"Track", t.TrackLabel + " " + t.TrackName},
		{"Release MBID", orDash(res.ReleaseMBID)},
		{"Release method", orDash(string(res.ReleaseMethod))},
		{"Recording MBID", orDash(res.RecordingMBID)},
		{"Recording method", orDash(string(res.RecordingMethod))},
		{"Key", orDash(deref(res.Key))},
		{"Chords key", orDash(deref(res.ChordsKey))},
		{"BPM", formatBPM(res.BPM)},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func renderRuns(runs []catalog.Run) string {
	headers := []string{"Run", "Started", "Duration", "Options", "Processed", "Releases", "Recordings", "Keys", "BPM", "Errors"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		errs := r.DBErrors + r.NotFoundErrors + r.Unavailable
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
			r.Options,
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.ReleasesMatched),
			strconv.Itoa(r.RecordingsMatched),
			strconv.Itoa(r.KeysAdded),
			strconv.Itoa(r.BPMAdded),
			strconv.Itoa(errs),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	return renderTable(headers, rows, aligns)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatBPM(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 1, 64)
}
