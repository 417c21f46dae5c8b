package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CLINVAR_TSV_INPUT_QUEUE_DEPTH", "9")
	t.Setenv("CLINVAR_TSV_LOGGING_REPEAT_WARNING_AFTER", "1h")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Input.QueueDepth)
	assert.Equal(t, time.Hour, cfg.Logging.RepeatWarningAfter)
	assert.Equal(t, model.DefaultConfig().Input.BufferSize, cfg.Input.BufferSize)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  buffer_size: 4096
router:
  structural_types: [copy number gain, inversion]
logging:
  encoding: json
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Input.BufferSize)
	assert.Equal(t, 5, cfg.Input.QueueDepth)
	assert.Equal(t, []string{"copy number gain", "inversion"}, cfg.Router.StructuralTypes)
	assert.Equal(t, "json", cfg.Logging.Encoding)
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("input.queue_depth", 0)
	_, err := loadConfig(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("logging.encoding", "xml")
	_, err = loadConfig(v)
	assert.Error(t, err)
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)

	// never overwritten
	assert.Error(t, writeDefaultConfig(path))
}

func TestXMLToTSVCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "release.xml")
	require.NoError(t, os.WriteFile(input, []byte(`<ReleaseSet Dated="2023-01-07">
<ClinVarSet ID="1"><ClinVarAssertion ID="1">
<ClinicalSignificance><ReviewStatus>practice guideline</ReviewStatus><Description>Benign</Description></ClinicalSignificance>
<MeasureSet Type="Variant" Acc="VCV1"><Measure Type="single nucleotide variant">
<SequenceLocation Assembly="GRCh38" Chr="1" start="5" stop="5" referenceAlleleVCF="C" alternateAlleleVCF="T"/>
</Measure></MeasureSet></ClinVarAssertion></ClinVarSet>
</ReleaseSet>`), 0o644))
	out := filepath.Join(dir, "out")
	prom := filepath.Join(dir, "clinvar.prom")
	// no config file in the default location
	t.Setenv("HOME", dir)

	rootCmd.SetArgs([]string{
		"xml-to-tsv", "-q",
		"--path-input-xml", input,
		"--path-output", out,
		"--metrics-textfile", prom,
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(out, "clinvar.b38.seqvars.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "VCV1")
	assert.Contains(t, lines[1], "practice guideline")

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "clinvar_tsv_sets_total 1")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetOut(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "clinvar-tsv "+version+"\n", buf.String())
}
