package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trackwaste/publicstats/pkg/dataset"
	"github.com/trackwaste/publicstats/pkg/metrics"
)

// RawData bundles every warehouse extract one snapshot computation needs.
type RawData struct {
	// Weekly bordereau statistics, one frame per bordereau type.
	BSDDWeekly         *dataset.Frame
	BSDAWeekly         *dataset.Frame
	BSFFWeekly         *dataset.Frame
	BSDASRIWeekly      *dataset.Frame
	BSVHUWeekly        *dataset.Frame
	NonDangerousWeekly *dataset.Frame

	AccountsWeekly       *dataset.Frame
	WeeklyWasteProcessed *dataset.Frame

	AccountsByNaf      *dataset.Frame
	WasteProducedByNaf *dataset.Frame

	IcpeInstallations      *dataset.Frame
	IcpeInstallationsWaste *dataset.Frame
	IcpeDepartementsWaste  *dataset.Frame
	IcpeRegionsWaste       *dataset.Frame
	IcpeFranceWaste        *dataset.Frame

	// OperationCodes maps processing operation codes to their description.
	OperationCodes map[string]string
}

// Extractor loads warehouse datasets with bounded concurrency.
type Extractor struct {
	client  Client
	log     *slog.Logger
	timeout time.Duration

	// Parallelism bounds concurrent extraction queries. Zero means 4.
	Parallelism int
}

func NewExtractor(client Client, log *slog.Logger, queryTimeout time.Duration) *Extractor {
	return &Extractor{client: client, log: log, timeout: queryTimeout}
}

// Extract runs every extraction query and returns the assembled raw data.
// Queries run concurrently; the first failure cancels the rest.
func (e *Extractor) Extract(ctx context.Context) (*RawData, error) {
	data := &RawData{}

	g, ctx := errgroup.WithContext(ctx)
	limit := e.Parallelism
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	frames := []struct {
		name string
		sql  string
		dst  **dataset.Frame
	}{
		{"bsdd_weekly", weeklyBordereauSQL(weeklyTables["bsdd"]), &data.BSDDWeekly},
		{"bsda_weekly", weeklyBordereauSQL(weeklyTables["bsda"]), &data.BSDAWeekly},
		{"bsff_weekly", weeklyBordereauSQL(weeklyTables["bsff"]), &data.BSFFWeekly},
		{"bsdasri_weekly", weeklyBordereauSQL(weeklyTables["bsdasri"]), &data.BSDASRIWeekly},
		{"bsvhu_weekly", weeklyBordereauSQL(weeklyTables["bsvhu"]), &data.BSVHUWeekly},
		{"bsd_non_dangereux_weekly", weeklyBordereauSQL(weeklyTables["bsd_non_dangereux"]), &data.NonDangerousWeekly},
		{"accounts_weekly", accountsWeeklySQL, &data.AccountsWeekly},
		{"weekly_waste_processed", weeklyWasteProcessedSQL, &data.WeeklyWasteProcessed},
		{"accounts_by_naf", accountsByNafSQL, &data.AccountsByNaf},
		{"waste_produced_by_naf", wasteProducedByNafSQL, &data.WasteProducedByNaf},
		{"icpe_installations", icpeInstallationsSQL, &data.IcpeInstallations},
		{"icpe_installations_waste", icpeInstallationsWasteSQL, &data.IcpeInstallationsWaste},
		{"icpe_departements_waste", icpeDepartementsWasteSQL, &data.IcpeDepartementsWaste},
		{"icpe_regions_waste", icpeRegionsWasteSQL, &data.IcpeRegionsWaste},
		{"icpe_france_waste", icpeFranceWasteSQL, &data.IcpeFranceWaste},
	}
	for _, f := range frames {
		f := f
		g.Go(func() error {
			frame, err := e.queryFrame(ctx, f.name, f.sql)
			if err != nil {
				return err
			}
			*f.dst = frame
			return nil
		})
	}

	g.Go(func() error {
		codes, err := e.queryOperationCodes(ctx)
		if err != nil {
			return err
		}
		data.OperationCodes = codes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (e *Extractor) queryFrame(ctx context.Context, name, sql string) (*dataset.Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	rows, err := e.client.Query(ctx, sql)
	if err != nil {
		metrics.WarehouseQueriesTotal.WithLabelValues(name, metrics.Status(err)).Inc()
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	frame, err := ScanFrame(rows)
	metrics.WarehouseQueriesTotal.WithLabelValues(name, metrics.Status(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", name, err)
	}
	metrics.WarehouseQueryDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())

	e.log.Info("warehouse: dataset extracted", "dataset", name, "rows", frame.Len(), "duration", time.Since(started))
	return frame, nil
}

func (e *Extractor) queryOperationCodes(ctx context.Context) (map[string]string, error) {
	frame, err := e.queryFrame(ctx, "operation_codes", operationCodesSQL)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		r := frame.Row(i)
		if r.IsNull("code") {
			continue
		}
		codes[r.Str("code")] = r.Str("description")
	}
	return codes, nil
}
