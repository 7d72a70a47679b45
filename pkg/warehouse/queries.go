package warehouse

import "fmt"

// The refined statistics views only start being reliable in 2020, earlier
// rows come from the pre-production era of the tracking system.
const weeklyDataStart = "2020-01-01"

// weeklyTables maps each bordereau type to its weekly statistics view.
var weeklyTables = map[string]string{
	"bsdd":              "refined_zone_stats_publiques.bsdd_statistiques_hebdomadaires",
	"bsda":              "refined_zone_stats_publiques.bsda_statistiques_hebdomadaires",
	"bsff":              "refined_zone_stats_publiques.bsff_statistiques_hebdomadaires",
	"bsdasri":           "refined_zone_stats_publiques.bsdasri_statistiques_hebdomadaires",
	"bsvhu":             "refined_zone_stats_publiques.bsvhu_statistiques_hebdomadaires",
	"bsd_non_dangereux": "refined_zone_stats_publiques.bsd_non_dangereux_statistiques_hebdomadaires",
}

func weeklyBordereauSQL(table string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE semaine >= '%s'", table, weeklyDataStart)
}

const (
	accountsWeeklySQL = `SELECT * FROM refined_zone_stats_publiques.accounts_created_by_week WHERE semaine >= '` + weeklyDataStart + `'`

	weeklyWasteProcessedSQL = `SELECT * FROM refined_zone_stats_publiques.weekly_waste_processed_stats WHERE semaine >= '` + weeklyDataStart + `'`

	accountsByNafSQL = `SELECT * FROM refined_zone_stats_publiques.annual_company_accounts_created_by_naf`

	wasteProducedByNafSQL = `SELECT * FROM refined_zone_stats_publiques.annual_waste_produced_by_naf`

	icpeInstallationsSQL = `SELECT * FROM refined_zone_stats_publiques.installations_icpe`

	icpeInstallationsWasteSQL = `
SELECT
    code_aiot,
    siret,
    rubrique,
    raison_sociale,
    quantite_autorisee,
    day_of_processing,
    quantite_traitee
FROM refined_zone_icpe.installations_daily_processed_wastes`

	icpeDepartementsWasteSQL = `
SELECT
    code_departement_insee,
    code_aiot,
    rubrique,
    quantite_autorisee,
    day_of_processing,
    quantite_traitee
FROM refined_zone_icpe.departements_daily_processed_wastes`

	icpeRegionsWasteSQL = `
SELECT
    code_region_insee,
    code_aiot,
    rubrique,
    quantite_autorisee,
    day_of_processing,
    quantite_traitee
FROM refined_zone_icpe.regions_daily_processed_wastes`

	icpeFranceWasteSQL = `
SELECT
    code_aiot,
    rubrique,
    quantite_autorisee,
    day_of_processing,
    quantite_traitee
FROM refined_zone_icpe.france_daily_processed_wastes`

	operationCodesSQL = `SELECT code, description FROM trusted_zone_referentials.codes_operations_traitements`
)
