// Package tsv writes routed rows as tab-separated text, one file per bucket.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/ppiankov/clinvar-tsv/internal/router"
)

// Columns is the header of every output file
var Columns = []string{
	"release",
	"set_id",
	"accession",
	"version",
	"assembly",
	"chromosome",
	"chromosome_accession",
	"start",
	"stop",
	"outer_start",
	"outer_stop",
	"inner_start",
	"inner_stop",
	"reference",
	"alternative",
	"variation_type",
	"genotype_set_type",
	"genotype_set_accession",
	"measure_set_accession",
	"symbols",
	"hgnc_ids",
	"review_status",
	"gold_stars",
	"pathogenicity",
	"clinical_significance",
	"date_evaluated",
	"traits",
	"title",
}

// FileName returns the output file name of a bucket
func FileName(b router.Bucket) string {
	return "clinvar." + b.String() + ".tsv"
}

// Writer formats rows onto an io.Writer
type Writer struct {
	w    *bufio.Writer
	line []string
	rows int
}

// NewWriter writes the header line and returns a Writer
func NewWriter(w io.Writer) (*Writer, error) {
	tw := &Writer{
		w:    bufio.NewWriterSize(w, 1<<20),
		line: make([]string, len(Columns)),
	}
	if err := tw.writeLine(Columns); err != nil {
		return nil, err
	}
	return tw, nil
}

// Write implements router.Sink
func (tw *Writer) Write(row *router.Row) error {
	loc := row.Location
	l := tw.line[:0]
	l = append(l,
		formatDate(&row.Release),
		strconv.FormatUint(uint64(row.Set.ID), 10),
		row.Accession,
		strconv.FormatUint(uint64(row.Version), 10),
		loc.Assembly,
		loc.Chrom,
		loc.ChromAcc,
		formatOptUint(loc.Start),
		formatOptUint(loc.Stop),
		formatOptUint(loc.OuterStart),
		formatOptUint(loc.OuterStop),
		formatOptUint(loc.InnerStart),
		formatOptUint(loc.InnerStop),
		formatOptString(loc.Reference),
		formatOptString(loc.Alternative),
		row.Measure.MeasureType,
		row.GenotypeSet.SetType,
		row.GenotypeSet.Accession,
		row.MeasureSet.Accession,
		strings.Join(row.Measure.Symbols, ";"),
		strings.Join(row.Measure.HGNCIDs, ";"),
		row.Assessment.ReviewStatus.String(),
		strconv.FormatUint(uint64(row.Assessment.GoldStars), 10),
		row.Assessment.Pathogenicity.String(),
	)
	if cs := row.ClinSig; cs != nil {
		l = append(l, formatOptString(cs.Description), formatDate(cs.DateEvaluated))
	} else {
		l = append(l, "", "")
	}
	l = append(l, traitNames(row.TraitSets), row.Set.Title)

	if err := tw.writeLine(l); err != nil {
		return err
	}
	tw.rows++
	return nil
}

// Rows returns the number of data rows written
func (tw *Writer) Rows() int {
	return tw.rows
}

// Flush writes buffered data to the underlying writer
func (tw *Writer) Flush() error {
	return tw.w.Flush()
}

func (tw *Writer) writeLine(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := tw.w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := tw.w.WriteString(clean(f)); err != nil {
			return err
		}
	}
	return tw.w.WriteByte('\n')
}

// clean replaces the separators of the format inside free text
func clean(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\r', '\n':
			return ' '
		}
		return r
	}, s)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatOptUint(v *uint32) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func formatOptString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func traitNames(sets []model.TraitSet) string {
	var names []string
	for _, ts := range sets {
		for _, t := range ts.Traits {
			if t.PreferredName != nil {
				names = append(names, *t.PreferredName)
			}
		}
	}
	return strings.Join(names, ";")
}

// Files is the set of four bucket files in an output directory
type Files struct {
	files   map[router.Bucket]*os.File
	writers map[router.Bucket]*Writer
}

// Create creates dir if needed and the four bucket files inside it,
// replacing existing files.
func Create(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	fs := &Files{
		files:   make(map[router.Bucket]*os.File, len(router.Buckets)),
		writers: make(map[router.Bucket]*Writer, len(router.Buckets)),
	}
	for _, b := range router.Buckets {
		path := filepath.Join(dir, FileName(b))
		f, err := os.Create(path)
		if err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		fs.files[b] = f

		w, err := NewWriter(f)
		if err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("write header of %s: %w", path, err)
		}
		fs.writers[b] = w
	}
	return fs, nil
}

// Sinks returns the writers keyed by bucket
func (fs *Files) Sinks() map[router.Bucket]router.Sink {
	sinks := make(map[router.Bucket]router.Sink, len(fs.writers))
	for b, w := range fs.writers {
		sinks[b] = w
	}
	return sinks
}

// Rows returns the number of data rows written per bucket
func (fs *Files) Rows() map[router.Bucket]int {
	rows := make(map[router.Bucket]int, len(fs.writers))
	for b, w := range fs.writers {
		rows[b] = w.Rows()
	}
	return rows
}

// Close flushes and closes every file
func (fs *Files) Close() error {
	var errs []error
	for _, b := range router.Buckets {
		if w := fs.writers[b]; w != nil {
			if err := w.Flush(); err != nil {
				errs = append(errs, fmt.Errorf("flush %s: %w", FileName(b), err))
			}
		}
		if f := fs.files[b]; f != nil {
			if err := f.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", FileName(b), err))
			}
		}
	}
	fs.writers, fs.files = nil, nil
	return errors.Join(errs...)
}
