// Package config loads the typed run configuration from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/inodb/gtload/internal/genetrap"
	"github.com/inodb/gtload/internal/input"
	"github.com/inodb/gtload/internal/store"
)

// Configuration keys.
const (
	KeyProvider          = "load.provider"
	KeyJNumber           = "load.jnumber"
	KeyCreatedBy         = "load.createdBy"
	KeyMode              = "load.mode"
	KeyWorkers           = "load.workers"
	KeyAlleleType        = "allele.type"
	KeyAlleleStatus      = "allele.status"
	KeyInheritanceMode   = "allele.inheritanceMode"
	KeySymbolTemplate    = "allele.symbolTemplate"
	KeyNameTemplate      = "allele.nameTemplate"
	KeyMolecularMutation = "allele.molecularMutation"
	KeyQualifier         = "allele.qualifier"
	KeyDerivationType    = "cellline.derivationType"
	KeyVectorType        = "cellline.vectorType"
	KeyMethods           = "seqtag.methods"
	KeyStoreDriver       = "store.driver"
	KeyStoreDSN          = "store.dsn"
	KeyBestHits          = "hitcount.bestHits"
	KeySingleHits        = "hitcount.singleHits"
	KeyOutputDir         = "output.dir"
	KeyCurationLog       = "output.curationLog"
	KeyDebugLog          = "output.debugLog"
	KeyMetricsTextfile   = "metrics.textfile"
	KeyS3Region          = "s3.region"
	KeyS3Endpoint        = "s3.endpoint"
	KeyS3PathStyle       = "s3.pathStyle"
	KeyS3AccessKeyID     = "s3.accessKeyID"
	KeyS3SecretKey       = "s3.secretAccessKey"
	KeyVerbose           = "verbose"
)

// Load modes.
const (
	ModeTransactional = "transactional"
	ModeBulk          = "bulk"
)

// Output file names inside the output directory.
const (
	RepeatsFile    = "repeats.gb"
	ProcessedFile  = "processed_seqkeys.txt"
	MergeSplitFile = "mergesplit.sql"
	CurationFile   = "curation.log"
)

// Config is the typed configuration of a load run.
type Config struct {
	GeneTrap  genetrap.Config
	CreatedBy string
	Mode      string
	Workers   int

	StoreDriver string
	StoreDSN    string

	BestHits   string
	SingleHits string

	OutputDir       string
	CurationLog     string
	DebugLog        string
	MetricsTextfile string

	S3      input.S3Options
	Verbose bool
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	gt := genetrap.DefaultConfig()
	v.SetDefault(KeyProvider, gt.Provider)
	v.SetDefault(KeyJNumber, gt.JNumber)
	v.SetDefault(KeyCreatedBy, "gtload")
	v.SetDefault(KeyMode, ModeTransactional)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyAlleleType, gt.AlleleType)
	v.SetDefault(KeyAlleleStatus, gt.AlleleStatus)
	v.SetDefault(KeyInheritanceMode, gt.InheritanceMode)
	v.SetDefault(KeySymbolTemplate, gt.SymbolTemplate)
	v.SetDefault(KeyNameTemplate, gt.NameTemplate)
	v.SetDefault(KeyMolecularMutation, gt.Mutation)
	v.SetDefault(KeyQualifier, gt.Qualifier)
	v.SetDefault(KeyDerivationType, gt.DerivationType)
	v.SetDefault(KeyVectorType, gt.VectorType)
	v.SetDefault(KeyMethods, gt.Methods)
	v.SetDefault(KeyStoreDriver, store.DriverDuckDB)
	v.SetDefault(KeyStoreDSN, filepath.Join("~", ".gtload", "gtload.duckdb"))
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyS3Region, "us-east-1")
}

// Load reads the configuration from v.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		GeneTrap: genetrap.Config{
			Provider:        v.GetString(KeyProvider),
			JNumber:         v.GetString(KeyJNumber),
			AlleleType:      v.GetString(KeyAlleleType),
			AlleleStatus:    v.GetString(KeyAlleleStatus),
			InheritanceMode: v.GetString(KeyInheritanceMode),
			SymbolTemplate:  v.GetString(KeySymbolTemplate),
			NameTemplate:    v.GetString(KeyNameTemplate),
			Mutation:        v.GetString(KeyMolecularMutation),
			Qualifier:       v.GetString(KeyQualifier),
			DerivationType:  v.GetString(KeyDerivationType),
			VectorType:      v.GetString(KeyVectorType),
			Methods:         v.GetString(KeyMethods),
		},
		CreatedBy:       v.GetString(KeyCreatedBy),
		Mode:            strings.ToLower(v.GetString(KeyMode)),
		Workers:         v.GetInt(KeyWorkers),
		StoreDriver:     strings.ToLower(v.GetString(KeyStoreDriver)),
		StoreDSN:        v.GetString(KeyStoreDSN),
		BestHits:        v.GetString(KeyBestHits),
		SingleHits:      v.GetString(KeySingleHits),
		OutputDir:       v.GetString(KeyOutputDir),
		CurationLog:     v.GetString(KeyCurationLog),
		DebugLog:        v.GetString(KeyDebugLog),
		MetricsTextfile: v.GetString(KeyMetricsTextfile),
		S3: input.S3Options{
			Region:          v.GetString(KeyS3Region),
			Endpoint:        v.GetString(KeyS3Endpoint),
			PathStyle:       v.GetBool(KeyS3PathStyle),
			AccessKeyID:     v.GetString(KeyS3AccessKeyID),
			SecretAccessKey: v.GetString(KeyS3SecretKey),
		},
		Verbose: v.GetBool(KeyVerbose),
	}

	var err error
	if c.StoreDSN, err = expandHome(c.StoreDSN); err != nil {
		return c, err
	}
	if c.CurationLog == "" {
		c.CurationLog = c.OutputPath(CurationFile)
	}
	return c, c.Validate()
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeTransactional, ModeBulk:
	default:
		return fmt.Errorf("%s: unknown mode %q (want %s or %s)", KeyMode, c.Mode, ModeTransactional, ModeBulk)
	}
	switch c.StoreDriver {
	case store.DriverDuckDB, store.DriverSQLite, store.DriverPgx:
	default:
		return fmt.Errorf("%s: unknown driver %q", KeyStoreDriver, c.StoreDriver)
	}
	if c.Mode == ModeBulk && c.StoreDriver != store.DriverDuckDB {
		return fmt.Errorf("%s=%s requires %s=%s", KeyMode, ModeBulk, KeyStoreDriver, store.DriverDuckDB)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%s: must not be negative", KeyWorkers)
	}
	if c.GeneTrap.JNumber == "" || !strings.HasPrefix(c.GeneTrap.JNumber, "J:") {
		return fmt.Errorf("%s: %q is not a J number", KeyJNumber, c.GeneTrap.JNumber)
	}
	if !strings.Contains(c.GeneTrap.SymbolTemplate, "~~MCL~~") {
		return fmt.Errorf("%s: template must contain ~~MCL~~", KeySymbolTemplate)
	}
	if _, err := genetrap.ParseMethods(c.GeneTrap.Methods); err != nil {
		return fmt.Errorf("%s: %w", KeyMethods, err)
	}
	return nil
}

// OutputPath returns the path of an output file.
func (c Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

func expandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}
