// Package build turns one year of warehouse extracts into a snapshot: the
// headline totals, the weekly and hierarchical figures, and the
// regulated-site metric rows.
package build

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/trackwaste/publicstats/pkg/chart"
	"github.com/trackwaste/publicstats/pkg/dataset"
	"github.com/trackwaste/publicstats/pkg/icpe"
	"github.com/trackwaste/publicstats/pkg/rollup"
	"github.com/trackwaste/publicstats/pkg/snapshot"
	"github.com/trackwaste/publicstats/pkg/stats"
	"github.com/trackwaste/publicstats/pkg/warehouse"
)

const weekColumn = "semaine"

func figJSON(fig chart.Figure) (json.RawMessage, error) {
	raw, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize figure: %w", err)
	}
	return raw, nil
}

func floorInt(v float64) int64 { return int64(math.Floor(v)) }

// Compute derives the whole snapshot of one year from the raw extracts. It
// is pure: no I/O, so a computation is reproducible from the same extracts.
func Compute(data *warehouse.RawData, year int) (*snapshot.YearSnapshot, error) {
	period := dataset.PeriodForYear(year)
	c := &snapshot.Computation{Year: year}

	// Processed quantities only ever count final processing operations;
	// intermediate treatments would double-count the same waste.
	const processedCol = "quantite_traitee_operations_finales"

	types := []struct {
		name          string
		frame         *dataset.Frame
		configs       []chart.LineConfig
		countsCol     string
		nonDangerous  bool
		countsFig     *json.RawMessage
		quantitiesFig *json.RawMessage
		created       *int64
		processed     *int64
	}{
		{"bsdd", data.BSDDWeekly, chart.WeeklyBordereauConfigs, "creations", false,
			&c.BsddCountsWeekly, &c.BsddQuantitiesWeekly, &c.BsddBordereauxCreated, &c.BsddQuantityProcessed},
		{"bsda", data.BSDAWeekly, chart.WeeklyBordereauConfigs, "creations", false,
			&c.BsdaCountsWeekly, &c.BsdaQuantitiesWeekly, &c.BsdaBordereauxCreated, &c.BsdaQuantityProcessed},
		{"bsdasri", data.BSDASRIWeekly, chart.WeeklyBordereauConfigs, "creations", false,
			&c.BsdasriCountsWeekly, &c.BsdasriQuantitiesWeekly, &c.BsdasriBordereauxCreated, &c.BsdasriQuantityProcessed},
		{"bsvhu", data.BSVHUWeekly, chart.WeeklyBordereauConfigs, "creations", false,
			&c.BsvhuCountsWeekly, &c.BsvhuQuantitiesWeekly, &c.BsvhuBordereauxCreated, &c.BsvhuQuantityProcessed},
		{"bsd_non_dangereux", data.NonDangerousWeekly, chart.WeeklyBordereauConfigs, "creations", true,
			&c.BsdNonDangerousCountsWeekly, &c.BsdNonDangerousQuantitiesWeekly, &c.BsdNonDangerousBordereauxCreated, &c.BsdNonDangerousQuantityProcessed},
		{"bsff", data.BSFFWeekly, chart.WeeklyBSFFConfigs, "creations_bordereaux", false,
			&c.BsffCountsWeekly, &c.BsffQuantitiesWeekly, &c.BsffBordereauxCreated, &c.BsffQuantityProcessed},
	}

	createdCategories := make([]stats.Category, 0, len(types))
	processedCategories := make([]stats.Category, 0, len(types))
	var err error
	for _, bt := range types {
		yearFrame := bt.frame.FilterPeriod(weekColumn, period)

		if *bt.countsFig, err = figJSON(chart.WeeklyScatter(yearFrame, weekColumn, bt.configs, chart.MetricCounts)); err != nil {
			return nil, fmt.Errorf("%s counts figure: %w", bt.name, err)
		}
		if *bt.quantitiesFig, err = figJSON(chart.WeeklyScatter(yearFrame, weekColumn, bt.configs, chart.MetricQuantity)); err != nil {
			return nil, fmt.Errorf("%s quantities figure: %w", bt.name, err)
		}

		*bt.created = floorInt(stats.Summed(bt.frame, weekColumn, bt.countsCol, &period))
		*bt.processed = floorInt(stats.Summed(bt.frame, weekColumn, processedCol, &period))

		// Created totals span every category; non-dangerous waste is kept
		// out of the processed totals and reported in its own fields.
		createdCategories = append(createdCategories, stats.Category{Name: bt.name, Frame: bt.frame, StatColumn: bt.countsCol})
		if !bt.nonDangerous {
			processedCategories = append(processedCategories, stats.Category{Name: bt.name, Frame: bt.frame, StatColumn: processedCol})
		}
	}

	c.TotalBsCreated = stats.TotalAcrossCategories(createdCategories, weekColumn, nil)
	c.TotalQuantityProcessed = stats.TotalAcrossCategories(processedCategories, weekColumn, nil)
	c.BsCreatedYearly = stats.TotalAcrossCategories(createdCategories, weekColumn, &period)
	c.QuantityProcessedYearly = stats.TotalAcrossCategories(processedCategories, weekColumn, &period)
	c.TotalQuantityProcessedNonDangerous = floorInt(stats.Summed(data.NonDangerousWeekly, weekColumn, processedCol, nil))
	c.QuantityProcessedNonDangerousYearly = floorInt(stats.Summed(data.NonDangerousWeekly, weekColumn, processedCol, &period))

	// BSFF packagings have their own weekly figure and two derived ratios.
	bsffYear := data.BSFFWeekly.FilterPeriod(weekColumn, period)
	if c.BsffPackagingsCountsWeekly, err = figJSON(chart.WeeklyScatter(bsffYear, weekColumn, chart.WeeklyBSFFPackagingsConfigs, chart.MetricCounts)); err != nil {
		return nil, fmt.Errorf("bsff packagings figure: %w", err)
	}
	c.MeanQuantityByBsffPackagings = stats.RatioOfSums(bsffYear,
		"quantite_traitee_operations_finales", "traitements_contenants_operations_finales", 1000)
	c.MeanPackagingsByBsff = stats.MeanOfRatios(bsffYear, "traitements_contenants", "traitements_bordereaux")

	// Weekly processed quantities, split by operation type.
	recovered, eliminated, err := stats.WeeklySplit(data.WeeklyWasteProcessed, weekColumn, "type_operation", "quantite_traitee")
	if err != nil {
		return nil, fmt.Errorf("weekly waste split: %w", err)
	}
	if c.QuantityProcessedWeekly, err = figJSON(chart.WeeklyQuantityProcessed(recovered, eliminated, weekColumn, "quantite_traitee", period)); err != nil {
		return nil, fmt.Errorf("quantity processed figure: %w", err)
	}

	sunburst, err := rollup.Sunburst(data.WeeklyWasteProcessed, data.OperationCodes, period)
	if err != nil {
		return nil, fmt.Errorf("sunburst rollup: %w", err)
	}
	if c.QuantityProcessedSunburst, err = figJSON(sunburst); err != nil {
		return nil, err
	}

	// NAF treemaps.
	companyTreemap, err := rollup.Treemap(data.AccountsByNaf, year, rollup.TreemapEstablishments)
	if err != nil {
		return nil, fmt.Errorf("company treemap rollup: %w", err)
	}
	if c.CompanyCountsByCategory, err = figJSON(companyTreemap); err != nil {
		return nil, err
	}
	quantityTreemap, err := rollup.Treemap(data.WasteProducedByNaf, year, rollup.TreemapQuantity)
	if err != nil {
		return nil, fmt.Errorf("produced quantity treemap rollup: %w", err)
	}
	if c.ProducedQuantityByCategory, err = figJSON(quantityTreemap); err != nil {
		return nil, err
	}

	// Account creations. The extract is one row per week with separate
	// establishment and user columns.
	accounts := data.AccountsWeekly
	c.TotalCompaniesCreated = floorInt(stats.Summed(accounts, weekColumn, "comptes_etablissements", nil))
	c.CompanyCreatedTotalLife = floorInt(stats.Summed(accounts, weekColumn, "comptes_etablissements", &period))
	c.UserCreatedTotalLife = floorInt(stats.Summed(accounts, weekColumn, "comptes_utilisateurs", &period))

	accountsYear := accounts.FilterPeriod(weekColumn, period)
	if c.CompanyCreatedWeekly, err = figJSON(chart.WeeklyCreated(accountsYear, weekColumn, "comptes_etablissements")); err != nil {
		return nil, fmt.Errorf("company created figure: %w", err)
	}
	if c.UserCreatedWeekly, err = figJSON(chart.WeeklyCreated(accountsYear, weekColumn, "comptes_utilisateurs")); err != nil {
		return nil, fmt.Errorf("user created figure: %w", err)
	}

	snap := &snapshot.YearSnapshot{Year: year, Computation: c}

	// Regulated-site metrics, every rubrique at every granularity.
	installations, err := icpe.AllRubriques(func(rubrique string) (*dataset.Frame, error) {
		return icpe.Installations(data.IcpeInstallations, data.IcpeInstallationsWaste, rubrique, period)
	})
	if err != nil {
		return nil, fmt.Errorf("installations rollup: %w", err)
	}
	snap.Installation = installationRows(installations, year)

	if snap.Departements, err = geoRows(data.IcpeDepartementsWaste, "code_departement_insee", year, period); err != nil {
		return nil, fmt.Errorf("departements rollup: %w", err)
	}
	if snap.Regions, err = geoRows(data.IcpeRegionsWaste, "code_region_insee", year, period); err != nil {
		return nil, fmt.Errorf("regions rollup: %w", err)
	}
	if snap.France, err = geoRows(data.IcpeFranceWaste, "", year, period); err != nil {
		return nil, fmt.Errorf("national rollup: %w", err)
	}

	return snap, nil
}

func installationRows(f *dataset.Frame, year int) []snapshot.InstallationRow {
	rows := make([]snapshot.InstallationRow, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		row := snapshot.InstallationRow{
			Year:                              year,
			CodeAiot:                          r.Str("code_aiot"),
			Rubrique:                          r.Str("rubrique"),
			QuantiteAutorisee:                 r.FloatOrNil("quantite_autorisee"),
			TauxConsommation:                  r.FloatOrNil("taux_consommation"),
			NombreInstallations:               r.Float("nombre_installations"),
			Graph:                             json.RawMessage(r.Str("graph")),
			CumulQuantiteTraitee:              optFloat(f, r, "cumul_quantite_traitee"),
			MoyenneQuantiteJournaliereTraitee: optFloat(f, r, "moyenne_quantite_journaliere_traitee"),
		}
		for col, dst := range map[string]**string{
			"siret":          &row.Siret,
			"raison_sociale": &row.RaisonSociale,
			"adresse1":       &row.Adresse1,
			"adresse2":       &row.Adresse2,
			"code_postal":    &row.CodePostal,
			"commune":        &row.Commune,
			"unite":          &row.Unite,
		} {
			if f.HasColumn(col) {
				*dst = r.StrOrNil(col)
			}
		}
		if f.HasColumn("latitude") {
			row.Latitude = r.FloatOrNil("latitude")
		}
		if f.HasColumn("longitude") {
			row.Longitude = r.FloatOrNil("longitude")
		}
		rows = append(rows, row)
	}
	return rows
}

func geoRows(events *dataset.Frame, keyCol string, year int, period dataset.Period) ([]snapshot.GeoRow, error) {
	f, err := icpe.AllRubriques(func(rubrique string) (*dataset.Frame, error) {
		return icpe.Regional(events, keyCol, rubrique, period)
	})
	if err != nil {
		return nil, err
	}

	rows := make([]snapshot.GeoRow, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		row := snapshot.GeoRow{
			Year:                              year,
			Rubrique:                          r.Str("rubrique"),
			QuantiteAutorisee:                 r.FloatOrNil("quantite_autorisee"),
			TauxConsommation:                  r.FloatOrNil("taux_consommation"),
			NombreInstallations:               r.Float("nombre_installations"),
			Graph:                             json.RawMessage(r.Str("graph")),
			CumulQuantiteTraitee:              optFloat(f, r, "cumul_quantite_traitee"),
			MoyenneQuantiteJournaliereTraitee: optFloat(f, r, "moyenne_quantite_journaliere_traitee"),
		}
		if keyCol != "" {
			row.Code = r.StrOrNil(keyCol)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optFloat(f *dataset.Frame, r dataset.Row, col string) *float64 {
	if !f.HasColumn(col) {
		return nil
	}
	return r.FloatOrNil(col)
}
