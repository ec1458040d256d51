// Package tui is a minimal terminal UI for interactive search: a query
// input with history-backed autocompletion, a result list, and a message
// preview.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/honganh1206/sift/engine"
)

const resultPageSize = 50

func Run(ctx context.Context, e *engine.Engine) error {
	app := tview.NewApplication()

	searchInput := tview.NewInputField()
	searchInput.SetTitle("Search").SetBorder(true)
	searchInput.SetFieldWidth(0)

	resultList := tview.NewList().ShowSecondaryText(true)
	resultList.SetTitle("Results").SetBorder(true)

	preview := tview.NewTextView().
		SetDynamicColors(false).
		SetWordWrap(true)
	preview.SetTitle("Message").SetBorder(true)

	status := tview.NewTextView().SetTextAlign(tview.AlignCenter)
	status.SetText("enter: search, esc: back to input, tab: results, ctrl-c: quit")

	// Prefix completion from indexed terms and past queries.
	searchInput.SetAutocompleteFunc(func(current string) []string {
		fields := strings.Fields(current)
		if len(fields) == 0 {
			return nil
		}
		return e.Suggest(fields[len(fields)-1], 8)
	})

	var results []engine.Result

	runSearch := func(query string) {
		page, err := e.Search(ctx, query, engine.Filters{Limit: resultPageSize})
		if err != nil {
			preview.SetText(fmt.Sprintf("search failed: %v", err))
			return
		}

		results = page.Results
		resultList.Clear()
		for _, r := range results {
			main := fmt.Sprintf("%s  %s", r.Timestamp.Format("2006-01-02 15:04"), r.UserID)
			secondary := r.Text
			if len(secondary) > 80 {
				secondary = secondary[:80]
			}
			resultList.AddItem(main, secondary, 0, nil)
		}

		if page.Total == 0 {
			preview.SetText("No results.")
		} else {
			status.SetText(fmt.Sprintf("%d results (showing %d)", page.Total, len(results)))
			app.SetFocus(resultList)
		}
	}

	resultList.SetChangedFunc(func(i int, _ string, _ string, _ rune) {
		if i < 0 || i >= len(results) {
			return
		}
		r := results[i]
		preview.SetText(fmt.Sprintf("From: %s\nConversation: %s\nAt: %s\n\n%s",
			r.UserID, r.ConversationID, r.Timestamp.Format("2006-01-02 15:04:05"), r.HighlightedText))
	})

	searchInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		query := strings.TrimSpace(searchInput.GetText())
		if query == "" {
			return
		}
		runSearch(query)
	})

	resultList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			app.SetFocus(searchInput)
			return nil
		}
		return event
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			if resultList.GetItemCount() > 0 {
				app.SetFocus(resultList)
				return nil
			}
		case tcell.KeyESC:
			app.SetFocus(searchInput)
			return nil
		}
		return event
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(searchInput, 3, 1, true).
		AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
			AddItem(resultList, 0, 1, false).
			AddItem(preview, 0, 2, false), 0, 1, false).
		AddItem(status, 1, 1, false)

	return app.SetRoot(layout, true).SetFocus(searchInput).Run()
}
