package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aluiziolira/go-catalog-browser/presenter"
	"github.com/aluiziolira/go-catalog-browser/query"
)

const prompt = "> "

// interactive reads one command per line from in and prints the settled
// view after each change.
func (a *app) interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	v, err := a.ctrl.Settled(ctx)
	if err != nil {
		return err
	}
	if err := presenter.Render(out, v); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil
		case "help", "h", "?":
			printHelp(out, a.cfg.PageSizes)
			continue
		case "":
			v, err = a.ctrl.Snapshot(ctx)
		default:
			var action query.Action
			action, err = query.ParseCommand(line, v.State)
			if err != nil {
				fmt.Fprintf(out, "error: %v (type help for commands)\n", err)
				continue
			}
			if _, err = a.ctrl.Apply(ctx, action); err != nil {
				return err
			}
			v, err = a.ctrl.Settled(ctx)
		}
		if err != nil {
			return err
		}
		if err := presenter.Render(out, v); err != nil {
			return err
		}
	}
}

func printHelp(out io.Writer, pageSizes []int) {
	sorts := make([]string, len(query.SortModes))
	for i, mode := range query.SortModes {
		sorts[i] = string(mode)
	}
	sizes := make([]string, len(pageSizes))
	for i, size := range pageSizes {
		sizes[i] = fmt.Sprint(size)
	}

	fmt.Fprintf(out, `Commands:
  category <tag>   toggle a category filter (%s)
  type <tag>       toggle a subcategory filter (%s)
  sort <mode>      %s
  search [text]    set or clear the search text
  page <n>         go to page n
  next, prev       move one page
  size <n>         items per page (%s)
  <enter>          show the current page
  quit             exit
`,
		strings.Join(query.KnownCategories, ", "),
		strings.Join(query.KnownSubCategories, ", "),
		strings.Join(sorts, ", "),
		strings.Join(sizes, ", "),
	)
}
