package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound reports that no snapshot exists for the requested year.
var ErrNotFound = errors.New("snapshot not found")

// Layer identifies one geographic granularity of the regulated-site
// snapshot and where its rows live.
type Layer struct {
	Name      string
	table     string
	keyColumn string
}

// Layers is the lookup table of geographic layers served by the API.
var Layers = []Layer{
	{Name: "installations", table: "installations_computations", keyColumn: "code_aiot"},
	{Name: "departements", table: "departements_computations", keyColumn: "code_departement_insee"},
	{Name: "regions", table: "regions_computations", keyColumn: "code_region_insee"},
	{Name: "france", table: "france_computations", keyColumn: ""},
}

// LayerByName resolves a layer from its API path segment.
func LayerByName(name string) (Layer, bool) {
	for _, l := range Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// nationalKey keys the single national row in layer responses.
const nationalKey = "France"

// MetricRow is one regulated-site metric row as served by the API.
type MetricRow struct {
	Key                               string          `json:"-"`
	QuantiteAutorisee                 *float64        `json:"quantite_autorisee"`
	CumulQuantiteTraitee              *float64        `json:"cumul_quantite_traitee,omitempty"`
	MoyenneQuantiteJournaliereTraitee *float64        `json:"moyenne_quantite_journaliere_traitee,omitempty"`
	TauxConsommation                  *float64        `json:"taux_consommation"`
	NombreInstallations               float64         `json:"nombre_installations"`
	Graph                             json.RawMessage `json:"graph,omitempty"`
}

// Computation returns the most recent yearly computation for a year.
func (s *Store) Computation(ctx context.Context, year int) (*Computation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			id, year, created,
			total_bs_created, total_quantity_processed, total_quantity_processed_non_dangerous,
			total_companies_created,
			quantity_processed_yearly, quantity_processed_non_dangerous_yearly, bs_created_yearly,
			quantity_processed_weekly, quantity_processed_sunburst,
			bsdd_counts_weekly, bsd_non_dangerous_counts_weekly, bsda_counts_weekly,
			bsff_counts_weekly, bsff_packagings_counts_weekly, bsdasri_counts_weekly, bsvhu_counts_weekly,
			bsdd_quantities_weekly, bsd_non_dangerous_quantities_weekly, bsda_quantities_weekly,
			bsff_quantities_weekly, bsdasri_quantities_weekly, bsvhu_quantities_weekly,
			bsdd_bordereaux_created, bsd_non_dangerous_bordereaux_created, bsda_bordereaux_created,
			bsff_bordereaux_created, bsdasri_bordereaux_created, bsvhu_bordereaux_created,
			bsdd_quantity_processed, bsd_non_dangerous_quantity_processed, bsda_quantity_processed,
			bsff_quantity_processed, bsdasri_quantity_processed, bsvhu_quantity_processed,
			mean_quantity_by_bsff_packagings, mean_packagings_by_bsff,
			produced_quantity_by_category, company_counts_by_category,
			company_created_total_life, user_created_total_life,
			company_created_weekly, user_created_weekly
		FROM computations
		WHERE year = $1
		ORDER BY created DESC
		LIMIT 1`, year)

	var c Computation
	err := row.Scan(
		&c.ID, &c.Year, &c.Created,
		&c.TotalBsCreated, &c.TotalQuantityProcessed, &c.TotalQuantityProcessedNonDangerous,
		&c.TotalCompaniesCreated,
		&c.QuantityProcessedYearly, &c.QuantityProcessedNonDangerousYearly, &c.BsCreatedYearly,
		&c.QuantityProcessedWeekly, &c.QuantityProcessedSunburst,
		&c.BsddCountsWeekly, &c.BsdNonDangerousCountsWeekly, &c.BsdaCountsWeekly,
		&c.BsffCountsWeekly, &c.BsffPackagingsCountsWeekly, &c.BsdasriCountsWeekly, &c.BsvhuCountsWeekly,
		&c.BsddQuantitiesWeekly, &c.BsdNonDangerousQuantitiesWeekly, &c.BsdaQuantitiesWeekly,
		&c.BsffQuantitiesWeekly, &c.BsdasriQuantitiesWeekly, &c.BsvhuQuantitiesWeekly,
		&c.BsddBordereauxCreated, &c.BsdNonDangerousBordereauxCreated, &c.BsdaBordereauxCreated,
		&c.BsffBordereauxCreated, &c.BsdasriBordereauxCreated, &c.BsvhuBordereauxCreated,
		&c.BsddQuantityProcessed, &c.BsdNonDangerousQuantityProcessed, &c.BsdaQuantityProcessed,
		&c.BsffQuantityProcessed, &c.BsdasriQuantityProcessed, &c.BsvhuQuantityProcessed,
		&c.MeanQuantityByBsffPackagings, &c.MeanPackagingsByBsff,
		&c.ProducedQuantityByCategory, &c.CompanyCountsByCategory,
		&c.CompanyCreatedTotalLife, &c.UserCreatedTotalLife,
		&c.CompanyCreatedWeekly, &c.UserCreatedWeekly,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read computation for year %d: %w", year, err)
	}
	c.normalize()
	return &c, nil
}

// LayerMetrics returns the metric rows of one layer, year and rubrique,
// keyed by entity code ("France" for the national layer), optionally
// restricted to a single code. Non-finite values were normalized on write;
// normalization is repeated here so the API never serializes them.
func (s *Store) LayerMetrics(ctx context.Context, layer Layer, year int, rubrique, code string) (map[string]MetricRow, error) {
	query := fmt.Sprintf(`
		SELECT %s, quantite_autorisee, cumul_quantite_traitee,
			moyenne_quantite_journaliere_traitee, taux_consommation,
			nombre_installations, graph
		FROM %s
		WHERE year = $1 AND rubrique = $2`, layer.selectKey(), layer.table)
	args := []any{year, rubrique}
	if code != "" && layer.keyColumn != "" {
		query += fmt.Sprintf(" AND %s = $3", layer.keyColumn)
		args = append(args, code)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s metrics: %w", layer.Name, err)
	}
	defer rows.Close()

	out := map[string]MetricRow{}
	for rows.Next() {
		var r MetricRow
		if err := rows.Scan(&r.Key, &r.QuantiteAutorisee, &r.CumulQuantiteTraitee,
			&r.MoyenneQuantiteJournaliereTraitee, &r.TauxConsommation,
			&r.NombreInstallations, &r.Graph); err != nil {
			return nil, fmt.Errorf("failed to scan %s metric row: %w", layer.Name, err)
		}
		r.QuantiteAutorisee = normFloat(r.QuantiteAutorisee)
		r.CumulQuantiteTraitee = normFloat(r.CumulQuantiteTraitee)
		r.MoyenneQuantiteJournaliereTraitee = normFloat(r.MoyenneQuantiteJournaliereTraitee)
		r.TauxConsommation = normFloat(r.TauxConsommation)
		out[r.Key] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s metric rows: %w", layer.Name, err)
	}
	return out, nil
}

func (l Layer) selectKey() string {
	if l.keyColumn == "" {
		return fmt.Sprintf("'%s'", nationalKey)
	}
	return l.keyColumn
}
