package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/clinvar-tsv/internal/builder"
	"github.com/ppiankov/clinvar-tsv/internal/metrics"
	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/ppiankov/clinvar-tsv/internal/readahead"
	"github.com/ppiankov/clinvar-tsv/internal/router"
	"github.com/ppiankov/clinvar-tsv/internal/tsv"
	"github.com/ppiankov/clinvar-tsv/internal/vocab"
	"github.com/ppiankov/clinvar-tsv/internal/xmltok"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pipeline orchestrates the complete conversion: read-ahead source,
// tokenizer, record builder, normalizer and router, run one record at a time.
type Pipeline struct {
	config  *model.Config
	log     *zap.Logger
	metrics *metrics.Metrics // nil disables counters
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, log *zap.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		config:  cfg,
		log:     log,
		metrics: m,
	}
}

// Result summarizes a finished run
type Result struct {
	Release  time.Time
	Sets     int
	Rows     map[router.Bucket]int
	Bytes    int64 // decompressed input bytes
	Duration time.Duration
}

// Run converts the release at inputPath into the four bucket files in
// outputDir. Cancelling ctx stops the run between two records.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputDir string) (res *Result, err error) {
	started := time.Now()
	window := p.config.Logging.RepeatWarningAfter

	src, err := readahead.Open(inputPath, readahead.Options{
		BufferSize: p.config.Input.BufferSize,
		QueueDepth: p.config.Input.QueueDepth,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close input: %w", cerr)
		}
	}()

	files, err := tsv.Create(outputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := files.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	rt, err := router.New(files.Sinks(), p.config.Router.StructuralTypes, p.log, window, p.metrics)
	if err != nil {
		return nil, err
	}

	input := &countingReader{r: src, metrics: p.metrics}
	b := builder.New(xmltok.New(input), p.log, window)
	norm := vocab.NewNormalizer(p.log, window, p.metrics)

	p.log.Info("converting",
		zap.String("input", inputPath),
		zap.String("output", outputDir),
		zap.String("buffer_size", humanize.IBytes(uint64(p.config.Input.BufferSize))),
		zap.Int("queue_depth", p.config.Input.QueueDepth))

	res = &Result{}
	progress := rate.Sometimes{Interval: p.config.Progress.Interval}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion interrupted after %d sets: %w", res.Sets, err)
		}

		set, err := b.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", inputPath, err)
		}

		if err := norm.Annotate(set); err != nil {
			return nil, err
		}

		var release time.Time
		if rs := b.Release(); rs != nil {
			release = rs.ReleaseDate
		}
		if _, err := rt.Route(release, set); err != nil {
			return nil, err
		}

		res.Sets++
		p.metrics.SetConverted()
		progress.Do(func() { p.logProgress(res.Sets, input.n, started) })
	}

	if rs := b.Release(); rs != nil {
		res.Release = rs.ReleaseDate
	}
	res.Rows = files.Rows()
	res.Bytes = input.n
	res.Duration = time.Since(started)
	p.metrics.RunFinished(res.Duration)

	fields := []zap.Field{
		zap.Int("sets", res.Sets),
		zap.String("input", humanize.Bytes(uint64(res.Bytes))),
		zap.Duration("elapsed", res.Duration),
	}
	for _, bucket := range router.Buckets {
		fields = append(fields, zap.Int(bucket.String(), res.Rows[bucket]))
	}
	p.log.Info("conversion finished", fields...)

	return res, nil
}

func (p *Pipeline) logProgress(sets int, bytes int64, started time.Time) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	elapsed := time.Since(started)
	var throughput uint64
	if secs := elapsed.Seconds(); secs > 0 {
		throughput = uint64(float64(bytes) / secs)
	}
	p.log.Info("progress",
		zap.Int("sets", sets),
		zap.String("input", humanize.Bytes(uint64(bytes))),
		zap.String("rate", humanize.Bytes(throughput)+"/s"),
		zap.String("heap_in_use", humanize.IBytes(ms.HeapInuse)),
		zap.Duration("elapsed", elapsed.Round(time.Second)))
}

// countingReader counts the decompressed bytes handed to the tokenizer
type countingReader struct {
	r       io.Reader
	n       int64
	metrics *metrics.Metrics
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	c.metrics.BytesRead(n)
	return n, err
}
