package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/pipeline"
	"github.com/dealmungchi/coursecrawler/internal/store"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSummary(w io.Writer, s pipeline.Summary) {
	t := newTable(w)
	t.SetTitle("run " + s.RunID)
	t.AppendRows([]table.Row{
		{"platform", s.Platform},
		{"pages", fmt.Sprintf("%d-%d", s.StartPage, s.EndPage)},
		{"pages skipped", s.PagesSkipped},
		{"extracted", s.Extracted},
		{"field failures", s.FieldFailures},
		{"ingested", s.IngestedCount},
		{"duplicates", s.Duplicates},
		{"failed", len(s.Failures)},
	})
	t.Render()

	if len(s.Failures) == 0 {
		return
	}
	f := newTable(w)
	f.AppendHeader(table.Row{"Stage", "Source URL", "Reason"})
	for _, failure := range s.Failures {
		f.AppendRow(table.Row{failure.Stage, failure.SourceURL, failure.Reason})
	}
	f.Render()
}

func renderCourses(w io.Writer, courses []course.Course) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Rating", "Students", "Hours", "Price", "Difficulty", "Authors"})
	for _, c := range courses {
		t.AppendRow(table.Row{c.ID, c.Name, c.Rating, c.TotalStudents, c.Duration, price(c.CurrentPrice), difficulty(c.Difficulty), authors(c.Authors)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d courses", len(courses))})
	t.Render()
}

func renderCourse(w io.Writer, c *course.Course) {
	lectures := "-"
	if c.TotalLectures != nil {
		lectures = fmt.Sprint(*c.TotalLectures)
	}

	t := newTable(w)
	t.SetTitle(c.Name)
	t.AppendRows([]table.Row{
		{"id", c.ID},
		{"url", c.URL},
		{"rating", c.Rating},
		{"students", c.TotalStudents},
		{"hours", c.Duration},
		{"lectures", lectures},
		{"price", price(c.CurrentPrice)},
		{"original price", price(c.OriginalPrice)},
		{"difficulty", difficulty(c.Difficulty)},
		{"authors", authors(c.Authors)},
		{"created", c.CreatedAt.Format("2006-01-02 15:04:05")},
	})
	t.Render()
}

func renderStats(w io.Writer, s store.Stats) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Courses", "Authors", "Difficulties", "Links"})
	t.AppendRow(table.Row{s.Courses, s.Authors, s.Difficulties, s.Links})
	t.Render()
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

func difficulty(d *course.Difficulty) string {
	if d == nil {
		return "-"
	}
	return d.Label
}

func authors(list []course.Author) string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}
