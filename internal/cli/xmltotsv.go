package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/clinvar-tsv/internal/logging"
	"github.com/ppiankov/clinvar-tsv/internal/metrics"
	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/ppiankov/clinvar-tsv/internal/pipeline"
	"github.com/ppiankov/clinvar-tsv/internal/router"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	pathInputXML    string
	pathOutput      string
	metricsTextfile string
)

// xmlToTSVCmd represents the xml-to-tsv command
var xmlToTSVCmd = &cobra.Command{
	Use:   "xml-to-tsv",
	Short: "Convert a ClinVar XML release into per-assembly TSV files",
	Long: `xml-to-tsv reads a ClinVar full release and writes four files into the
output directory:

  clinvar.b37.seqvars.tsv    small variants on GRCh37
  clinvar.b37.strucvars.tsv  structural variants on GRCh37
  clinvar.b38.seqvars.tsv    small variants on GRCh38
  clinvar.b38.strucvars.tsv  structural variants on GRCh38

Inputs ending in .gz are gunzipped, inputs ending in .zst are zstd-decompressed.

Example:
  clinvar-tsv xml-to-tsv --path-input-xml ClinVarFullRelease_2023-01.xml.gz --path-output out/
  clinvar-tsv xml-to-tsv --path-input-xml release.xml.gz --path-output out/ -v --metrics-textfile clinvar.prom`,
	Args: cobra.NoArgs,
	RunE: runXMLToTSV,
}

func init() {
	rootCmd.AddCommand(xmlToTSVCmd)

	defaults := model.DefaultConfig()
	flags := xmlToTSVCmd.Flags()

	flags.StringVar(&pathInputXML, "path-input-xml", "", "path to the ClinVar XML release (.xml, .xml.gz or .xml.zst)")
	flags.StringVar(&pathOutput, "path-output", "", "output directory for the TSV files")
	_ = xmlToTSVCmd.MarkFlagRequired("path-input-xml")
	_ = xmlToTSVCmd.MarkFlagRequired("path-output")

	// Tuning flags override config file and environment
	flags.Int("buffer-size", defaults.Input.BufferSize, "bytes per read-ahead buffer")
	flags.Int("queue-depth", defaults.Input.QueueDepth, "read-ahead buffers queued ahead of the parser")
	flags.Duration("progress-interval", defaults.Progress.Interval, "time between progress log lines")
	flags.StringVar(&metricsTextfile, "metrics-textfile", "", "write run counters to this file in Prometheus text format")

	_ = viper.BindPFlag("input.buffer_size", flags.Lookup("buffer-size"))
	_ = viper.BindPFlag("input.queue_depth", flags.Lookup("queue-depth"))
	_ = viper.BindPFlag("progress.interval", flags.Lookup("progress-interval"))
}

func runXMLToTSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if level == "" {
		level = logging.LevelFromVerbosity(verbose, quiet)
	}
	log, err := logging.New(level, cfg.Logging.Encoding)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := metrics.New()
	if err != nil {
		return err
	}

	started := time.Now()
	log.Info("starting xml-to-tsv", zap.String("version", version))

	res, err := pipeline.NewPipeline(cfg, log, m).Run(ctx, pathInputXML, pathOutput)
	if err != nil {
		return fmt.Errorf("xml-to-tsv failed: %w", err)
	}

	if metricsTextfile != "" {
		if err := m.WriteTextfile(metricsTextfile); err != nil {
			return err
		}
		log.Debug("wrote metrics", zap.String("path", metricsTextfile))
	}

	rows := 0
	for _, b := range router.Buckets {
		rows += res.Rows[b]
	}
	log.Info("xml-to-tsv finished",
		zap.Int("sets", res.Sets),
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(started)))
	log.Info("All done. Have a nice day!")
	return nil
}
