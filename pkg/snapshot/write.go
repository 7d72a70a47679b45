package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trackwaste/publicstats/pkg/metrics"
)

var snapshotTables = []string{
	"computations",
	"installations_computations",
	"departements_computations",
	"regions_computations",
	"france_computations",
}

// jsonArg returns a figure column value, defaulting absent figures to an
// empty object so the column stays valid jsonb.
func jsonArg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// ReplaceYear replaces every snapshot row of one year in a single
// transaction: readers see either the previous year's computation or the new
// one, never a half-written mix.
func (s *Store) ReplaceYear(ctx context.Context, snap *YearSnapshot) (err error) {
	defer func() {
		metrics.SnapshotWritesTotal.WithLabelValues(metrics.Status(err)).Inc()
	}()

	started := time.Now()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range snapshotTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE year = $1", table), snap.Year); err != nil {
			return fmt.Errorf("failed to clear %s for year %d: %w", table, snap.Year, err)
		}
	}

	if snap.Computation != nil {
		if err := insertComputation(ctx, tx, snap.Year, snap.Computation); err != nil {
			return err
		}
	}
	for i := range snap.Installation {
		if err := insertInstallation(ctx, tx, snap.Year, &snap.Installation[i]); err != nil {
			return err
		}
	}
	for i := range snap.Departements {
		if err := insertGeo(ctx, tx, "departements_computations", "code_departement_insee", snap.Year, &snap.Departements[i]); err != nil {
			return err
		}
	}
	for i := range snap.Regions {
		if err := insertGeo(ctx, tx, "regions_computations", "code_region_insee", snap.Year, &snap.Regions[i]); err != nil {
			return err
		}
	}
	for i := range snap.France {
		if err := insertFrance(ctx, tx, snap.Year, &snap.France[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot for year %d: %w", snap.Year, err)
	}

	s.log.Info("snapshot: year replaced",
		"year", snap.Year,
		"installations", len(snap.Installation),
		"departements", len(snap.Departements),
		"regions", len(snap.Regions),
		"duration", time.Since(started))
	return nil
}

func insertComputation(ctx context.Context, tx pgx.Tx, year int, c *Computation) error {
	c.normalize()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}
	c.Year = year

	_, err := tx.Exec(ctx, `
		INSERT INTO computations (
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
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
			$41, $42, $43, $44, $45
		)`,
		c.ID, c.Year, c.Created,
		c.TotalBsCreated, c.TotalQuantityProcessed, c.TotalQuantityProcessedNonDangerous,
		c.TotalCompaniesCreated,
		c.QuantityProcessedYearly, c.QuantityProcessedNonDangerousYearly, c.BsCreatedYearly,
		jsonArg(c.QuantityProcessedWeekly), jsonArg(c.QuantityProcessedSunburst),
		jsonArg(c.BsddCountsWeekly), jsonArg(c.BsdNonDangerousCountsWeekly), jsonArg(c.BsdaCountsWeekly),
		jsonArg(c.BsffCountsWeekly), jsonArg(c.BsffPackagingsCountsWeekly), jsonArg(c.BsdasriCountsWeekly), jsonArg(c.BsvhuCountsWeekly),
		jsonArg(c.BsddQuantitiesWeekly), jsonArg(c.BsdNonDangerousQuantitiesWeekly), jsonArg(c.BsdaQuantitiesWeekly),
		jsonArg(c.BsffQuantitiesWeekly), jsonArg(c.BsdasriQuantitiesWeekly), jsonArg(c.BsvhuQuantitiesWeekly),
		c.BsddBordereauxCreated, c.BsdNonDangerousBordereauxCreated, c.BsdaBordereauxCreated,
		c.BsffBordereauxCreated, c.BsdasriBordereauxCreated, c.BsvhuBordereauxCreated,
		c.BsddQuantityProcessed, c.BsdNonDangerousQuantityProcessed, c.BsdaQuantityProcessed,
		c.BsffQuantityProcessed, c.BsdasriQuantityProcessed, c.BsvhuQuantityProcessed,
		c.MeanQuantityByBsffPackagings, c.MeanPackagingsByBsff,
		jsonArg(c.ProducedQuantityByCategory), jsonArg(c.CompanyCountsByCategory),
		c.CompanyCreatedTotalLife, c.UserCreatedTotalLife,
		jsonArg(c.CompanyCreatedWeekly), jsonArg(c.UserCreatedWeekly),
	)
	if err != nil {
		return fmt.Errorf("failed to insert computation for year %d: %w", year, err)
	}
	return nil
}

func insertInstallation(ctx context.Context, tx pgx.Tx, year int, r *InstallationRow) error {
	r.normalize()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	r.Year = year

	_, err := tx.Exec(ctx, `
		INSERT INTO installations_computations (
			id, year, created, code_aiot, rubrique,
			siret, raison_sociale, adresse1, adresse2, code_postal, commune, unite,
			latitude, longitude,
			quantite_autorisee, cumul_quantite_traitee,
			moyenne_quantite_journaliere_traitee, taux_consommation,
			nombre_installations, graph
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)`,
		r.ID, r.Year, r.Created, r.CodeAiot, r.Rubrique,
		r.Siret, r.RaisonSociale, r.Adresse1, r.Adresse2, r.CodePostal, r.Commune, r.Unite,
		r.Latitude, r.Longitude,
		r.QuantiteAutorisee, r.CumulQuantiteTraitee,
		r.MoyenneQuantiteJournaliereTraitee, r.TauxConsommation,
		r.NombreInstallations, jsonArg(r.Graph),
	)
	if err != nil {
		return fmt.Errorf("failed to insert installation %s: %w", r.CodeAiot, err)
	}
	return nil
}

func insertGeo(ctx context.Context, tx pgx.Tx, table, keyColumn string, year int, r *GeoRow) error {
	r.normalize()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	r.Year = year

	_, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			id, year, created, rubrique, %s,
			quantite_autorisee, cumul_quantite_traitee,
			moyenne_quantite_journaliere_traitee, taux_consommation,
			nombre_installations, graph
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, table, keyColumn),
		r.ID, r.Year, r.Created, r.Rubrique, r.Code,
		r.QuantiteAutorisee, r.CumulQuantiteTraitee,
		r.MoyenneQuantiteJournaliereTraitee, r.TauxConsommation,
		r.NombreInstallations, jsonArg(r.Graph),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s row: %w", table, err)
	}
	return nil
}

func insertFrance(ctx context.Context, tx pgx.Tx, year int, r *GeoRow) error {
	r.normalize()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	r.Year = year

	_, err := tx.Exec(ctx, `
		INSERT INTO france_computations (
			id, year, created, rubrique,
			quantite_autorisee, cumul_quantite_traitee,
			moyenne_quantite_journaliere_traitee, taux_consommation,
			nombre_installations, graph
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.Year, r.Created, r.Rubrique,
		r.QuantiteAutorisee, r.CumulQuantiteTraitee,
		r.MoyenneQuantiteJournaliereTraitee, r.TauxConsommation,
		r.NombreInstallations, jsonArg(r.Graph),
	)
	if err != nil {
		return fmt.Errorf("failed to insert france row: %w", err)
	}
	return nil
}
