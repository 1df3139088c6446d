// Package workload loads the tweet list that drives a scrape run.
package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	errs "tweetscraper/pkg/errors"
)

// Kind is the post_type of a tweet in the input table
type Kind string

const (
	KindOriginal Kind = "original"
	KindRetweet  Kind = "retweet"
	KindReply    Kind = "reply"
	KindQuote    Kind = "quote"
)

// Input column names
const (
	ColumnPostType  = "post_type"
	ColumnPostLink  = "post_link"
	ColumnImageName = "image_name"
)

// WorkItem is one tweet to process. Index is its position in the
// filtered sequence and never changes once assigned.
type WorkItem struct {
	Index     int
	Kind      Kind
	Link      string
	ImageName string
}

// Source holds every row of the input table in file order
type Source struct {
	path  string
	items []WorkItem
}

// Load reads the input CSV at path. The header must name post_type and
// post_link; image_name is optional.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeLoad, err, "failed to open input")
	}
	defer f.Close()

	src, err := Read(f)
	if err != nil {
		return nil, err
	}
	src.path = path
	return src, nil
}

// Read parses an input table from r
func Read(r io.Reader) (*Source, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeLoad, err, "failed to read input header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	typeCol, ok := columns[ColumnPostType]
	if !ok {
		return nil, errs.New(errs.ErrorTypeLoad, fmt.Sprintf("input is missing column %q", ColumnPostType))
	}
	linkCol, ok := columns[ColumnPostLink]
	if !ok {
		return nil, errs.New(errs.ErrorTypeLoad, fmt.Sprintf("input is missing column %q", ColumnPostLink))
	}
	imageCol, hasImage := columns[ColumnImageName]

	src := &Source{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeLoad, err, fmt.Sprintf("failed to read input line %d", line))
		}
		if len(record) <= typeCol || len(record) <= linkCol {
			return nil, errs.New(errs.ErrorTypeLoad, fmt.Sprintf("input line %d has %d fields", line, len(record)))
		}

		item := WorkItem{
			Index: len(src.items),
			Kind:  Kind(strings.TrimSpace(record[typeCol])),
			Link:  strings.TrimSpace(record[linkCol]),
		}
		if hasImage && imageCol < len(record) {
			item.ImageName = strings.TrimSpace(record[imageCol])
		}
		src.items = append(src.items, item)
	}

	return src, nil
}

// Len returns the number of rows in the input
func (s *Source) Len() int {
	return len(s.items)
}

// Path returns the file the source was loaded from, if any
func (s *Source) Path() string {
	return s.path
}

// Filter returns the items whose kind is one of kinds, reindexed from 0
// in file order. No kinds means every item.
func (s *Source) Filter(kinds ...Kind) []WorkItem {
	wanted := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		wanted[k] = struct{}{}
	}

	filtered := make([]WorkItem, 0, len(s.items))
	for _, item := range s.items {
		if len(wanted) > 0 {
			if _, ok := wanted[item.Kind]; !ok {
				continue
			}
		}
		item.Index = len(filtered)
		filtered = append(filtered, item)
	}
	return filtered
}

// Kinds converts configured post type names
func Kinds(names []string) []Kind {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kinds = append(kinds, Kind(n))
		}
	}
	return kinds
}
