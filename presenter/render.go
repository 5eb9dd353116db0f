package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	indexWidth = 4
	nameWidth  = 36
	priceWidth = 10
	ellipsis   = "…"
)

// Render writes a plain text listing of v to w.
func Render(w io.Writer, v View) error {
	var b strings.Builder

	b.WriteString(header(v))
	b.WriteByte('\n')

	switch {
	case v.ShowLoadingIndicator:
		b.WriteString("Loading...\n")
	case v.Failed:
		fmt.Fprintf(&b, "Failed to load products: %v\n", v.Err)
	case v.IsLoading:
		b.WriteString("Loading... (showing previous results)\n")
	}

	if len(v.Items) == 0 && !v.IsLoading && !v.Failed {
		b.WriteString("No products found.\n")
	}

	for i, item := range v.Items {
		index := fmt.Sprintf("%d.", i+1)
		name := runewidth.FillRight(runewidth.Truncate(item.Name, nameWidth, ellipsis), nameWidth)
		price := item.Price.StringFixed(2)
		if pad := priceWidth - runewidth.StringWidth(price); pad > 0 {
			price = strings.Repeat(" ", pad) + price
		}
		fmt.Fprintf(&b, "%s %s %s  %s\n",
			runewidth.FillLeft(index, indexWidth), name, price, item.Slug)
	}

	b.WriteString(footer(v))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func header(v View) string {
	parts := []string{v.PageLabel, v.SortLabel}
	if v.State.Search != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", v.State.Search))
	}
	if v.State.Categories.Len() > 0 {
		parts = append(parts, "Category: "+v.State.Categories.Join(", "))
	}
	if v.State.SubCategories.Len() > 0 {
		parts = append(parts, "Type: "+v.State.SubCategories.Join(", "))
	}
	parts = append(parts, fmt.Sprintf("%d per page", v.State.PageSize))
	return strings.Join(parts, " | ")
}

func footer(v View) string {
	prev := "  "
	if v.CanGoPrevious {
		prev = "< "
	}
	next := "  "
	if v.CanGoNext {
		next = " >"
	}
	return prev + v.PageLabel + next
}
