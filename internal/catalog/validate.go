package catalog

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"
)

// Validate checks every definition and reports all problems at once.
func Validate(defs []Definition) error {
	var errs *multierror.Error
	seen := mapset.NewThreadUnsafeSet[string]()

	for i, d := range defs {
		if strings.TrimSpace(d.ID) == "" {
			errs = multierror.Append(errs, fmt.Errorf("indicator #%d: id is required", i))
			continue
		}
		if !seen.Add(d.ID) {
			errs = multierror.Append(errs, fmt.Errorf("indicator %q: duplicate id", d.ID))
		}
		if d.Title == "" {
			errs = multierror.Append(errs, fmt.Errorf("indicator %q: title is required", d.ID))
		}

		switch p := d.Params.(type) {
		case ModelParams:
		case WorldBankParams:
			if p.CountryCode == "" || p.IndicatorCode == "" {
				errs = multierror.Append(errs, fmt.Errorf("indicator %q: worldbank needs country_code and indicator_code", d.ID))
			}
		case BCBParams:
			if p.SeriesID <= 0 {
				errs = multierror.Append(errs, fmt.Errorf("indicator %q: bcb_sgs series_id must be positive, got %d", d.ID, p.SeriesID))
			}
		case nil:
			errs = multierror.Append(errs, fmt.Errorf("indicator %q: no strategy configured", d.ID))
		default:
			errs = multierror.Append(errs, fmt.Errorf("indicator %q: unknown strategy %T", d.ID, p))
		}
	}

	return errs.ErrorOrNil()
}
