package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			WidthMax:    48,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderResult draws a generation result as one or more tables
func renderResult(result *models.GenerationResult) string {
	var b strings.Builder

	if result.Mode == models.ModeList {
		rows := make([][]string, 0, len(result.Cards))
		for i, card := range result.Cards {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				card.Icon + " " + card.Title,
				card.Description,
				strings.Join(card.Tags, ", "),
			})
		}
		b.WriteString(renderTable([]string{"#", "Card", "Description", "Tags"}, rows))
	} else if p := result.Poster; p != nil {
		fmt.Fprintf(&b, "%s %s\n%s\n", p.HeroIcon, p.Title, p.Subtitle)

		rows := make([][]string, 0, len(p.Sections))
		for _, s := range p.Sections {
			rows = append(rows, []string{s.Icon + " " + s.Heading, s.Body})
		}
		b.WriteString(renderTable([]string{"Section", "Body"}, rows))

		if p.Compare != nil {
			b.WriteString("\n")
			b.WriteString(renderTable(
				[]string{p.Compare.Left.Title, p.Compare.Right.Title},
				[][]string{{
					strings.Join(p.Compare.Left.Bullets, "\n"),
					strings.Join(p.Compare.Right.Bullets, "\n"),
				}},
			))
		}

		if len(p.Grid) > 0 {
			rows = rows[:0]
			for _, g := range p.Grid {
				rows = append(rows, []string{g.Icon + " " + g.Title, g.Text})
			}
			b.WriteString("\n")
			b.WriteString(renderTable([]string{"Key point", "Text"}, rows))
		}

		if p.Takeaway != nil {
			fmt.Fprintf(&b, "\n%s\n", p.Takeaway.Summary)
			if p.Takeaway.Question != "" {
				fmt.Fprintf(&b, "%s\n", p.Takeaway.Question)
			}
		}
	}

	if result.Model != "" {
		fmt.Fprintf(&b, "\n(answered by fallback model %s)", result.Model)
	}
	b.WriteString("\n")
	return b.String()
}
