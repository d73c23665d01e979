package window

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcliao/binrefine/internal/model"
)

// LinkMode selects how an existing links file is treated.
type LinkMode string

const (
	// LinkAppend accumulates links across runs, creating the file if needed.
	LinkAppend LinkMode = "append"
	// LinkOverwrite truncates any existing links file.
	LinkOverwrite LinkMode = "overwrite"
)

// ParseLinkMode validates a link mode string.
func ParseLinkMode(s string) (LinkMode, error) {
	switch LinkMode(s) {
	case LinkAppend, LinkOverwrite:
		return LinkMode(s), nil
	}
	return "", fmt.Errorf("invalid link mode %q (valid: append, overwrite)", s)
}

// Group is the ordered windows of a single parent scaffold.
type Group struct {
	Parent  string
	Windows []model.Window
}

// Links returns one link per consecutive window pair within each group.
// Windows of different parents are never linked.
func Links(groups []Group) []model.Link {
	var out []model.Link
	for _, g := range groups {
		for i := 0; i+1 < len(g.Windows); i++ {
			out = append(out, model.Link{From: g.Windows[i].ID, To: g.Windows[i+1].ID})
		}
	}
	return out
}

// WriteLinks writes the links of groups to path as tab-separated id pairs.
// notify, if set, receives a note when an existing file is appended to.
func WriteLinks(path string, groups []Group, mode LinkMode, notify func(string)) error {
	flags := os.O_CREATE | os.O_WRONLY
	switch mode {
	case LinkOverwrite:
		flags |= os.O_TRUNC
	case LinkAppend, "":
		flags |= os.O_APPEND
		if _, err := os.Stat(path); err == nil {
			if notify != nil {
				notify(fmt.Sprintf("links file %s already exists; new links will be appended", path))
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat links file: %w", err)
		}
	default:
		return fmt.Errorf("invalid link mode %q", mode)
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open links file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, l := range Links(groups) {
		fmt.Fprintf(bw, "%s\t%s\n", l.From, l.To)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write links: %w", err)
	}
	return f.Close()
}

// ReadLinks parses a links file written by WriteLinks.
func ReadLinks(r io.Reader) ([]model.Link, error) {
	sc := bufio.NewScanner(r)
	var out []model.Link
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		from, to, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected two tab-separated ids", line)
		}
		out = append(out, model.Link{From: from, To: strings.TrimSpace(to)})
	}
	return out, sc.Err()
}
