package chart

var palette = []string{"#000091", "#5E2A2B", "#66673D", "#E4794A", "#60E0EB", "#009099"}

// WeeklyBordereauConfigs drives the weekly scatter figure for the standard
// bordereau types (BSDD, BSDA, BSDASRI, BSVHU and non-dangerous waste).
var WeeklyBordereauConfigs = []LineConfig{
	{
		CountsColumn:   "creations",
		QuantityColumn: "quantite_tracee",
		CountsName:     "État initial",
		CountsSuffix:   "traçés",
		QuantityName:   "Quantité initiale",
		QuantitySuffix: "tonnes tracées",
		Color:          palette[0],
	},
	{
		CountsColumn:   "envois",
		QuantityColumn: "quantite_envoyee",
		CountsName:     "Pris en charge par le transporteur",
		CountsSuffix:   "pris en charge par le transporteur",
		QuantityName:   "Prise en charge par le transporteur",
		QuantitySuffix: "tonnes prises en charge par le transporteur",
		Color:          palette[1],
		Visible:        "legendonly",
	},
	{
		CountsColumn:   "receptions",
		QuantityColumn: "quantite_recue",
		CountsName:     "Reçu par le destinataire",
		CountsSuffix:   "reçus par le destinataire",
		QuantityName:   "Reçue par le destinataire",
		QuantitySuffix: "tonnes reçues par le destinataire",
		Color:          palette[2],
	},
	{
		CountsColumn:   "traitements",
		QuantityColumn: "quantite_traitee",
		CountsName:     "Traité",
		CountsSuffix:   "marqués comme traités",
		QuantityName:   "Traitée",
		QuantitySuffix: "tonnes traitées",
		Color:          palette[3],
	},
	{
		CountsColumn:   "traitements_operations_non_finales",
		QuantityColumn: "quantite_traitee_operations_non_finales",
		CountsName:     "Traité (traitement intermédiaire)",
		CountsSuffix:   "en traitement intermédiaire",
		QuantityName:   "Traitée (traitement intermédiaire)",
		QuantitySuffix: "tonnes traitées en traitement intermédiaire",
		Color:          palette[4],
		Visible:        "legendonly",
	},
	{
		CountsColumn:   "traitements_operations_finales",
		QuantityColumn: "quantite_traitee_operations_finales",
		CountsName:     "Traité (traitement final)",
		CountsSuffix:   "en traitement final",
		QuantityName:   "Traitée (traitement final)",
		QuantitySuffix: "tonnes traitées en traitement final",
		Color:          palette[5],
		Visible:        "legendonly",
	},
}

// WeeklyBSFFConfigs overrides the counts columns for BSFF, whose record
// counts are tracked per bordereau rather than per movement.
var WeeklyBSFFConfigs = []LineConfig{
	{
		CountsColumn:   "creations_bordereaux",
		QuantityColumn: "quantite_tracee",
		CountsName:     "État initial",
		CountsSuffix:   "traçés",
		QuantityName:   "Quantité initiale",
		QuantitySuffix: "tonnes tracées",
		Color:          palette[0],
	},
	{
		CountsColumn:   "envois_bordereaux",
		QuantityColumn: "quantite_envoyee",
		CountsName:     "Pris en charge par le transporteur",
		CountsSuffix:   "pris en charge par le transporteur",
		QuantityName:   "Prise en charge par le transporteur",
		QuantitySuffix: "tonnes prises en charge par le transporteur",
		Color:          palette[1],
		Visible:        "legendonly",
	},
	{
		CountsColumn:   "receptions_bordereaux",
		QuantityColumn: "quantite_recue",
		CountsName:     "Reçu par le destinataire",
		CountsSuffix:   "reçus par le destinataire",
		QuantityName:   "Reçue par le destinataire",
		QuantitySuffix: "tonnes reçues par le destinataire",
		Color:          palette[2],
	},
	{
		CountsColumn:   "traitements_bordereaux",
		QuantityColumn: "quantite_traitee_operations_finales",
		CountsName:     "Traité",
		CountsSuffix:   "marqués comme traités",
		QuantityName:   "Traitée",
		QuantitySuffix: "tonnes traitées",
		Color:          palette[3],
	},
}

// WeeklyBSFFPackagingsConfigs plots BSFF packagings (contenants) instead of
// bordereaux; only counts traces exist for packagings.
var WeeklyBSFFPackagingsConfigs = []LineConfig{
	{
		CountsColumn: "traitements_contenants",
		CountsName:   "Traité",
		CountsSuffix: "contenants traités",
		Color:        palette[3],
	},
	{
		CountsColumn: "traitements_contenants_operations_finales",
		CountsName:   "Traité (traitement final)",
		CountsSuffix: "contenants en traitement final",
		Color:        palette[5],
	},
}
