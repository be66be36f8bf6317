package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/inovacc/rael/internal/model"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const (
	nameWidth        = 20
	descriptionWidth = 30
)

// promptConfirm asks the user for confirmation and returns true if they confirm
// prompt should include the question (e.g., "Delete this file? [y/N]: ")
func promptConfirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(response)

	return response == "y" || response == "Y" || strings.EqualFold(response, "yes")
}

// truncateString truncates a string to the specified length with ellipsis
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}

	return "No"
}

// repositoryRow renders one record the way the list table shows it
func repositoryRow(r model.RepositoryRecord) []string {
	description := r.Description
	if description == "" {
		description = "No description"
	}

	return []string{
		truncateString(r.Name, nameWidth),
		truncateString(description, descriptionWidth),
		yesNo(r.IsPrivate),
		r.OwnerID,
	}
}

func renderRepositoryTable(records []model.RepositoryRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, repositoryRow(r))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("Name", "Description", "Private", "Owner ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}

			switch col {
			case 0:
				return style.Width(nameWidth + 2)
			case 1:
				return style.Width(descriptionWidth + 2)
			default:
				return style
			}
		})

	return t.String()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
