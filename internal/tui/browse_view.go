package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/recon"
)

// View renders the browser (Bubble Tea interface).
func (m BrowseModel) View() string {
	if m.view.Status == grid.StatusLoading && len(m.view.Rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), RenderLoading(m.loading))
	}

	parts := []string{m.renderHeader(), m.renderSearch()}

	if m.picker != nil {
		parts = append(parts, BoxStyle.Render(
			HeaderStyle.Render("COLUMNS")+"\n"+m.picker.View(),
		))
	} else {
		parts = append(parts, m.renderBody())
	}

	parts = append(parts, m.renderFooter(), m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m BrowseModel) renderHeader() string {
	title := TitleStyle.Render(m.kind.Title())
	meta := []string{LabelStyle.Render(m.view.Mode.String())}
	if m.view.Status == grid.StatusLoading {
		meta = append(meta, m.loading.View())
	}
	if len(m.view.Sort) > 0 {
		meta = append(meta, LabelStyle.Render("sort ")+ValueStyle.Render(sorting.Format(m.view.Sort)))
	}
	if status := m.view.Filters[recon.FilterStatus]; status != "" {
		meta = append(meta, LabelStyle.Render("status ")+ValueStyle.Render(status))
	}
	return title + "  " + strings.Join(meta, "  ")
}

func (m BrowseModel) renderSearch() string {
	line := m.search.View()
	if !m.editing && m.view.Search.Committed == "" && m.view.Search.Draft == "" {
		line = MutedStyle.Render("/ to search")
	}
	if m.view.Searching {
		line += " " + MutedStyle.Render("searching...")
	}
	return line
}

func (m BrowseModel) renderBody() string {
	if m.view.Status == grid.StatusError {
		msg := CriticalStyle.Render("Error: " + errString(m.view.Err))
		if len(m.view.Rows) == 0 {
			return msg + "\n" + MutedStyle.Render("r to retry")
		}
		return msg + "\n" + m.table.View()
	}
	if len(m.view.Rows) == 0 && m.view.Status == grid.StatusLoaded {
		return MutedStyle.Render("No results.")
	}
	return m.table.View()
}

func (m BrowseModel) renderFooter() string {
	page := fmt.Sprintf("Page %d of %d", m.view.Pagination.PageIndex+1, max(m.view.PageCount, 1))
	size := fmt.Sprintf("%d per page", m.view.Pagination.PageSize)
	footer := strings.Join([]string{
		LabelStyle.Render(m.view.Footer),
		ValueStyle.Render(page),
		LabelStyle.Render(size),
	}, "  ")

	if a, ok := m.currentRow(); ok {
		footer += "  " + severityStyle(a.Severity).Render(a.Severity)
	}
	if m.view.BulkErr != nil {
		footer += "\n" + CriticalStyle.Render("Bulk action failed: "+m.view.BulkErr.Error())
	}
	if m.confirming {
		footer += "\n" + CriticalStyle.Render(fmt.Sprintf("Delete %d selected? (y/N)", len(m.view.SelectedIDs)))
	} else if m.notice != "" {
		footer += "\n" + NoticeStyle.Render(m.notice)
	}
	return footer
}

func (m BrowseModel) renderHelp() string {
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return HelpStyle.Render(strings.Join(parts, " • "))
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
