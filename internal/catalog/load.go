package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

const defaultModelSource = "Modelo"

// entry mirrors one YAML list item; exactly one strategy block must be set.
type entry struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Unit     string `yaml:"unit"`
	Source   string `yaml:"source"`

	Model *struct {
		BaseValue       float64 `yaml:"base_value"`
		GrowthPerSecond float64 `yaml:"growth_per_second"`
	} `yaml:"model"`
	WorldBank *struct {
		CountryCode   string `yaml:"country_code"`
		IndicatorCode string `yaml:"indicator_code"`
	} `yaml:"worldbank"`
	BCB *struct {
		SeriesID int `yaml:"series_id"`
	} `yaml:"bcb_sgs"`
}

// Default returns the registry compiled into the binary.
func Default() (*Registry, error) {
	defs, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return NewRegistry(defs)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close() //nolint:errcheck

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	defs, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return NewRegistry(defs)
}

// Load returns the catalog at path, or the embedded default if path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes a YAML catalog into definitions, in file order.
func Parse(b []byte) ([]Definition, error) {
	var entries []entry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	var errs *multierror.Error
	defs := make([]Definition, 0, len(entries))
	for i, e := range entries {
		d, err := e.definition()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("indicator #%d (%s): %w", i, e.ID, err))
			continue
		}
		defs = append(defs, d)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return defs, nil
}

func (e entry) definition() (Definition, error) {
	d := Definition{
		ID:       e.ID,
		Title:    e.Title,
		Category: e.Category,
		Unit:     e.Unit,
		Source:   e.Source,
	}

	n := 0
	if e.Model != nil {
		n++
		d.Params = ModelParams{BaseValue: e.Model.BaseValue, GrowthPerSecond: e.Model.GrowthPerSecond}
		if d.Source == "" {
			d.Source = defaultModelSource
		}
	}
	if e.WorldBank != nil {
		n++
		d.Params = WorldBankParams{CountryCode: e.WorldBank.CountryCode, IndicatorCode: e.WorldBank.IndicatorCode}
	}
	if e.BCB != nil {
		n++
		d.Params = BCBParams{SeriesID: e.BCB.SeriesID}
	}

	switch n {
	case 0:
		return Definition{}, fmt.Errorf("one of model, worldbank or bcb_sgs is required")
	case 1:
		return d, nil
	default:
		return Definition{}, fmt.Errorf("only one of model, worldbank or bcb_sgs may be set, got %d", n)
	}
}
