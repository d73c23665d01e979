package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Window is a fragment of a parent scaffold.
type Window struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Seq    string `json:"-"`
}

// Link records physical adjacency of two windows of the same parent.
type Link struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WindowID encodes a window id as "<parent>:<start>to<end>".
func WindowID(parent string, start, end int) string {
	return fmt.Sprintf("%s:%dto%d", parent, start, end)
}

// ParseWindowID decodes an id produced by WindowID. Parent ids may contain ':'.
func ParseWindowID(id string) (parent string, start, end int, err error) {
	i := strings.LastIndex(id, ":")
	if i < 0 {
		return "", 0, 0, fmt.Errorf("window id %q: missing ':'", id)
	}
	parent = id[:i]
	lo, hi, ok := strings.Cut(id[i+1:], "to")
	if !ok {
		return "", 0, 0, fmt.Errorf("window id %q: missing range", id)
	}
	if start, err = strconv.Atoi(lo); err != nil {
		return "", 0, 0, fmt.Errorf("window id %q start: %w", id, err)
	}
	if end, err = strconv.Atoi(hi); err != nil {
		return "", 0, 0, fmt.Errorf("window id %q end: %w", id, err)
	}
	return parent, start, end, nil
}
