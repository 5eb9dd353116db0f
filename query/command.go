package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCommand is returned by ParseCommand for unrecognised input.
var ErrUnknownCommand = errors.New("unknown command")

// Known filter tags offered by the storefront.
var (
	KnownCategories    = []string{"Men", "Women", "Kids"}
	KnownSubCategories = []string{"Topwear", "Bottomwear", "Winterwear"}
)

// ParseCommand maps one line of user input to an Action. current is used by
// the relative commands next and prev.
//
//	category <tag> | type <tag> | sort <mode> | search [text]
//	page <n> | next | prev | size <n>
func ParseCommand(line string, current State) (Action, error) {
	line = strings.TrimSpace(line)
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "category", "cat", "c":
		if arg == "" {
			return nil, fmt.Errorf("%s: missing tag", verb)
		}
		return ToggleCategory{Tag: arg}, nil

	case "type", "sub", "subcategory", "t":
		if arg == "" {
			return nil, fmt.Errorf("%s: missing tag", verb)
		}
		return ToggleSubCategory{Tag: arg}, nil

	case "sort", "s":
		mode, err := ParseSortMode(arg)
		if err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
		return SetSort{Mode: mode}, nil

	case "search", "find", "/":
		return SetSearch{Text: arg}, nil

	case "page", "p":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("page: invalid number %q", arg)
		}
		return SetPage{Page: n}, nil

	case "next", "n":
		return SetPage{Page: current.Page + 1}, nil

	case "prev", "previous", "b":
		return SetPage{Page: max(current.Page-1, 1)}, nil

	case "size", "limit":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("size: invalid number %q", arg)
		}
		return SetPageSize{Size: n}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
}
