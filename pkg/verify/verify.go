// Package verify checks that every image named in a media output file was
// stored and can be decoded.
package verify

import (
	"context"
	"encoding/csv"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
)

// Reason explains why an image failed verification
type Reason string

const (
	ReasonMissing     Reason = "missing"
	ReasonUndecodable Reason = "undecodable"
)

// MissingHeader is the header of the missing-image report
var MissingHeader = []string{"post_link", "image_name", "reason"}

// Missing is an output row whose image is absent or unreadable
type Missing struct {
	PostLink  string
	ImageName string
	Reason    Reason
}

// Result summarizes a verification pass
type Result struct {
	Checked int
	Missing []Missing
}

// Checker verifies images in a media directory
type Checker struct {
	mediaDir string
	logger   logger.Logger
}

// NewChecker creates a checker for mediaDir
func NewChecker(mediaDir string, log logger.Logger) *Checker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Checker{mediaDir: mediaDir, logger: log}
}

// CheckFile verifies every row of the media output at path
func (c *Checker) CheckFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeLoad, err, "failed to open output")
	}
	defer f.Close()
	return c.Check(ctx, f)
}

// Check verifies every row read from r. The table needs post_link and
// image_name columns.
func (c *Checker) Check(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeLoad, err, "failed to read output header")
	}
	linkCol, imageCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "post_link":
			linkCol = i
		case "image_name":
			imageCol = i
		}
	}
	if linkCol < 0 || imageCol < 0 {
		return nil, errs.New(errs.ErrorTypeLoad, "output needs post_link and image_name columns")
	}

	result := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, errs.Wrap(errs.ErrorTypeLoad, err, "failed to read output")
		}
		if linkCol >= len(record) || imageCol >= len(record) {
			continue
		}

		name := strings.TrimSpace(record[imageCol])
		if name == "" {
			continue
		}
		result.Checked++

		if reason, bad := c.checkImage(name); bad {
			result.Missing = append(result.Missing, Missing{
				PostLink:  strings.TrimSpace(record[linkCol]),
				ImageName: name,
				Reason:    reason,
			})
		}
	}

	c.logger.InfoWithFields("Verification finished", map[string]interface{}{
		"checked": result.Checked,
		"missing": len(result.Missing),
	})
	return result, nil
}

func (c *Checker) checkImage(name string) (Reason, bool) {
	f, err := os.Open(filepath.Join(c.mediaDir, name))
	if err != nil {
		return ReasonMissing, true
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		c.logger.DebugWithFields("image cannot be decoded", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		return ReasonUndecodable, true
	}
	return "", false
}

// WriteReport writes the missing rows as CSV
func WriteReport(w io.Writer, missing []Missing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MissingHeader); err != nil {
		return err
	}
	for _, m := range missing {
		if err := cw.Write([]string{m.PostLink, m.ImageName, string(m.Reason)}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
