package reporting

import (
	"fmt"
	"time"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/config"
)

// Flags derives the plausibility warnings for one project. The thresholds
// only decide which projects get marked as suspicious; no metric value ever
// depends on them. The caller supplies now so the check stays deterministic
// under test.
func Flags(pm schemas.ProjectMetrics, cfg config.FlagsConfig, now time.Time) []string {
	var flags []string

	if cfg.MaxSpanYears > 0 && pm.DateSpanDays > cfg.MaxSpanYears*365 {
		flags = append(flags, fmt.Sprintf("date span %dd exceeds %dy", pm.DateSpanDays, cfg.MaxSpanYears))
	}

	if pm.DateMax != "" {
		if latest, err := time.Parse(time.DateOnly, pm.DateMax); err == nil {
			horizon := now.AddDate(0, 0, cfg.FutureToleranceDays)
			if latest.After(horizon) {
				flags = append(flags, fmt.Sprintf("dateMax %s is more than %dd in the future", pm.DateMax, cfg.FutureToleranceDays))
			}
		}
	}

	if pm.DateMin != "" {
		if earliest, err := time.Parse(time.DateOnly, pm.DateMin); err == nil && earliest.Year() < cfg.MinPlausibleYear {
			flags = append(flags, fmt.Sprintf("dateMin %s predates year %d", pm.DateMin, cfg.MinPlausibleYear))
		}
	}

	if n := pm.Quality.Total(); n > 0 {
		flags = append(flags, fmt.Sprintf("%d data-quality issues recorded", n))
	}

	return flags
}

// Annotate stamps every project in the run with its plausibility flags.
// Metric values are never touched.
func Annotate(run *schemas.RunResult, cfg config.FlagsConfig, now time.Time) {
	for i := range run.Projects {
		run.Projects[i].Flags = Flags(run.Projects[i], cfg, now)
	}
}
