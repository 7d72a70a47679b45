package snapshot

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Computation is the yearly public-statistics snapshot: headline totals,
// per-bordereau-type breakdowns and the serialized figures the dashboard
// renders as-is.
type Computation struct {
	ID      uuid.UUID `json:"id"`
	Year    int       `json:"year"`
	Created time.Time `json:"created"`

	TotalBsCreated                      int64 `json:"total_bs_created"`
	TotalQuantityProcessed              int64 `json:"total_quantity_processed"`
	TotalQuantityProcessedNonDangerous  int64 `json:"total_quantity_processed_non_dangerous"`
	TotalCompaniesCreated               int64 `json:"total_companies_created"`
	QuantityProcessedYearly             int64 `json:"quantity_processed_yearly"`
	QuantityProcessedNonDangerousYearly int64 `json:"quantity_processed_non_dangerous_yearly"`
	BsCreatedYearly                     int64 `json:"bs_created_yearly"`

	QuantityProcessedWeekly   json.RawMessage `json:"quantity_processed_weekly"`
	QuantityProcessedSunburst json.RawMessage `json:"quantity_processed_sunburst"`

	BsddCountsWeekly            json.RawMessage `json:"bsdd_counts_weekly"`
	BsdNonDangerousCountsWeekly json.RawMessage `json:"bsd_non_dangerous_counts_weekly"`
	BsdaCountsWeekly            json.RawMessage `json:"bsda_counts_weekly"`
	BsffCountsWeekly            json.RawMessage `json:"bsff_counts_weekly"`
	BsffPackagingsCountsWeekly  json.RawMessage `json:"bsff_packagings_counts_weekly"`
	BsdasriCountsWeekly         json.RawMessage `json:"bsdasri_counts_weekly"`
	BsvhuCountsWeekly           json.RawMessage `json:"bsvhu_counts_weekly"`

	BsddQuantitiesWeekly            json.RawMessage `json:"bsdd_quantities_weekly"`
	BsdNonDangerousQuantitiesWeekly json.RawMessage `json:"bsd_non_dangerous_quantities_weekly"`
	BsdaQuantitiesWeekly            json.RawMessage `json:"bsda_quantities_weekly"`
	BsffQuantitiesWeekly            json.RawMessage `json:"bsff_quantities_weekly"`
	BsdasriQuantitiesWeekly         json.RawMessage `json:"bsdasri_quantities_weekly"`
	BsvhuQuantitiesWeekly           json.RawMessage `json:"bsvhu_quantities_weekly"`

	BsddBordereauxCreated            int64 `json:"bsdd_bordereaux_created"`
	BsdNonDangerousBordereauxCreated int64 `json:"bsd_non_dangerous_bordereaux_created"`
	BsdaBordereauxCreated            int64 `json:"bsda_bordereaux_created"`
	BsffBordereauxCreated            int64 `json:"bsff_bordereaux_created"`
	BsdasriBordereauxCreated         int64 `json:"bsdasri_bordereaux_created"`
	BsvhuBordereauxCreated           int64 `json:"bsvhu_bordereaux_created"`

	BsddQuantityProcessed            int64 `json:"bsdd_quantity_processed"`
	BsdNonDangerousQuantityProcessed int64 `json:"bsd_non_dangerous_quantity_processed"`
	BsdaQuantityProcessed            int64 `json:"bsda_quantity_processed"`
	BsffQuantityProcessed            int64 `json:"bsff_quantity_processed"`
	BsdasriQuantityProcessed         int64 `json:"bsdasri_quantity_processed"`
	BsvhuQuantityProcessed           int64 `json:"bsvhu_quantity_processed"`

	MeanQuantityByBsffPackagings *float64 `json:"mean_quantity_by_bsff_packagings"`
	MeanPackagingsByBsff         *float64 `json:"mean_packagings_by_bsff"`

	ProducedQuantityByCategory json.RawMessage `json:"produced_quantity_by_category"`
	CompanyCountsByCategory    json.RawMessage `json:"company_counts_by_category"`

	CompanyCreatedTotalLife int64           `json:"company_created_total_life"`
	UserCreatedTotalLife    int64           `json:"user_created_total_life"`
	CompanyCreatedWeekly    json.RawMessage `json:"company_created_weekly"`
	UserCreatedWeekly       json.RawMessage `json:"user_created_weekly"`
}

// InstallationRow is one regulated installation's metrics for one year and
// rubrique.
type InstallationRow struct {
	ID      uuid.UUID `json:"id"`
	Year    int       `json:"year"`
	Created time.Time `json:"created"`

	CodeAiot      string   `json:"code_aiot"`
	Rubrique      string   `json:"rubrique"`
	Siret         *string  `json:"siret"`
	RaisonSociale *string  `json:"raison_sociale"`
	Adresse1      *string  `json:"adresse1"`
	Adresse2      *string  `json:"adresse2"`
	CodePostal    *string  `json:"code_postal"`
	Commune       *string  `json:"commune"`
	Unite         *string  `json:"unite"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`

	QuantiteAutorisee                 *float64        `json:"quantite_autorisee"`
	CumulQuantiteTraitee              *float64        `json:"cumul_quantite_traitee"`
	MoyenneQuantiteJournaliereTraitee *float64        `json:"moyenne_quantite_journaliere_traitee"`
	TauxConsommation                  *float64        `json:"taux_consommation"`
	NombreInstallations               float64         `json:"nombre_installations"`
	Graph                             json.RawMessage `json:"graph"`
}

// GeoRow is one department, region or national aggregate for one year and
// rubrique. Code is nil on national rows.
type GeoRow struct {
	ID      uuid.UUID `json:"id"`
	Year    int       `json:"year"`
	Created time.Time `json:"created"`

	Rubrique string  `json:"rubrique"`
	Code     *string `json:"code,omitempty"`

	QuantiteAutorisee                 *float64        `json:"quantite_autorisee"`
	CumulQuantiteTraitee              *float64        `json:"cumul_quantite_traitee"`
	MoyenneQuantiteJournaliereTraitee *float64        `json:"moyenne_quantite_journaliere_traitee"`
	TauxConsommation                  *float64        `json:"taux_consommation"`
	NombreInstallations               float64         `json:"nombre_installations"`
	Graph                             json.RawMessage `json:"graph"`
}

// YearSnapshot is everything ReplaceYear persists for one year.
type YearSnapshot struct {
	Year         int
	Computation  *Computation
	Installation []InstallationRow
	Departements []GeoRow
	Regions      []GeoRow
	France       []GeoRow
}
