// cmd/engine/commands.go
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pharmalytics/inventory-engine/internal/cache"
	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/engine"
	"github.com/pharmalytics/inventory-engine/internal/engine/interaction"
	"github.com/pharmalytics/inventory-engine/internal/repository/postgres"
	"github.com/pharmalytics/inventory-engine/internal/rules"
	"github.com/pharmalytics/inventory-engine/internal/service"
	"github.com/pharmalytics/inventory-engine/internal/storage"
	"github.com/pharmalytics/inventory-engine/pkg/logger"
	"github.com/urfave/cli/v2"
)

func parseGranularity(raw string) (domain.Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day":
		return domain.GranularityDay, nil
	case "week":
		return domain.GranularityWeek, nil
	case "month":
		return domain.GranularityMonth, nil
	default:
		return "", fmt.Errorf("granularity must be day, week or month, got %q", raw)
	}
}

func runBatchCommand(c *cli.Context) error {
	cfg := config.Load()

	g, err := parseGranularity(c.String("granularity"))
	if err != nil {
		return err
	}

	db, ok := c.Context.Value(dbKey).(*sqlx.DB)
	if !ok || db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	eng := engine.New(cfg.Engine)
	svc := service.NewEngineService(
		eng,
		cfg.Engine,
		postgres.NewConsumptionRepository(db),
		postgres.NewInventoryRepository(db),
		nil,
		cache.NewNoopForecastCache(),
	)

	batch, run, err := svc.RunAll(c.Context, g, c.Int("horizon"))
	if err != nil {
		return err
	}

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed creating output directory: %w", err)
	}

	stamp := run.StartedAt.Format("20060102_150405")
	jsonPath := filepath.Join(outDir, fmt.Sprintf("run_%s.json", stamp))
	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed encoding results: %w", err)
	}
	if err := os.WriteFile(jsonPath, payload, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", jsonPath, err)
	}

	csvPath := filepath.Join(outDir, fmt.Sprintf("run_%s.csv", stamp))
	if err := writeResultsCSV(csvPath, batch.Items); err != nil {
		return err
	}

	logger.Log.Info().
		Str("json", jsonPath).
		Str("csv", csvPath).
		Int("items", run.ItemCount).
		Int("failed", run.FailedCount).
		Msg("batch run written")

	if c.Bool("upload") {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("storage not configured: %w", err)
		}
		key := fmt.Sprintf("runs/run_%s.json", stamp)
		if err := client.UploadObject(c.Context, key, payload); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Str("bucket", cfg.Storage.Bucket).Msg("results uploaded")
	}

	return nil
}

func runCSVCommand(c *cli.Context) error {
	cfg := config.Load()

	g, err := parseGranularity(c.String("granularity"))
	if err != nil {
		return err
	}

	recordsByItem, err := readConsumptionCSV(c.String("input"))
	if err != nil {
		return err
	}

	itemIDs := make([]string, 0, len(recordsByItem))
	for itemID := range recordsByItem {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Strings(itemIDs)

	items := make([]engine.ItemInput, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		items = append(items, engine.ItemInput{
			ItemID:         itemID,
			Records:        recordsByItem[itemID],
			Granularity:    g,
			HorizonPeriods: c.Int("horizon"),
		})
	}

	eng := engine.New(cfg.Engine)
	batch, err := eng.RunBatch(c.Context, items, time.Now().UTC())
	if err != nil {
		return err
	}

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed creating output directory: %w", err)
	}

	csvPath := filepath.Join(outDir, fmt.Sprintf("forecast_%s.csv", batch.GeneratedAt.Format("20060102_150405")))
	if err := writeResultsCSV(csvPath, batch.Items); err != nil {
		return err
	}

	logger.Log.Info().Str("csv", csvPath).Int("items", len(batch.Items)).Msg("offline run written")
	return nil
}

func fetchCommand(c *cli.Context) error {
	cfg := config.Load()

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage not configured: %w", err)
	}

	if key := c.String("key"); key != "" {
		dest := filepath.Join(c.String("dest"), filepath.Base(key))
		if err := client.DownloadObject(c.Context, key, dest); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Str("dest", dest).Msg("run result downloaded")
		return nil
	}

	objects, err := client.ListObjects(c.Context, c.String("prefix"))
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		fmt.Println("no archived runs found")
		return nil
	}
	for _, object := range objects {
		fmt.Printf("%s\t%d\n", object.Key, object.Size)
	}
	return nil
}

func checkCommand(c *cli.Context) error {
	drugs := c.Args().Slice()
	if len(drugs) < 2 {
		return fmt.Errorf("at least two drug names are required")
	}

	loader, err := rules.NewLoader(c.String("rules"))
	if err != nil {
		return err
	}

	cfg := config.Load()
	matcher := interaction.NewMatcher(cfg.Engine.SimilarityThreshold)
	result := matcher.Check(drugs, loader.Current())

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))

	if result.OverallRisk == domain.InteractionSevere {
		return cli.Exit("severe interaction detected", 2)
	}
	return nil
}

// readConsumptionCSV parses item_id,timestamp,quantity rows, with or without
// a header line.
func readConsumptionCSV(path string) (map[string][]domain.ConsumptionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed reading %s: %w", path, err)
	}

	byItem := make(map[string][]domain.ConsumptionRecord)
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("%s line %d: expected item_id,timestamp,quantity", path, i+1)
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "item_id") {
			continue
		}

		itemID := strings.TrimSpace(row[0])
		ts, err := parseTimestamp(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid quantity: %w", path, i+1, err)
		}

		byItem[itemID] = append(byItem[itemID], domain.ConsumptionRecord{
			ItemID:    itemID,
			Timestamp: ts,
			Quantity:  qty,
		})
	}

	return byItem, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

func writeResultsCSV(path string, items []engine.ItemResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed creating %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"item_id", "model", "per_period", "confidence_low", "confidence_high", "anomalies", "reorder_qty", "error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, item := range items {
		row := []string{item.ItemID, "", "", "", "", strconv.Itoa(len(item.Anomalies)), "", item.Error}
		if item.Forecast != nil {
			row[1] = item.Forecast.ModelName
			row[2] = strconv.FormatFloat(item.Forecast.PerPeriod, 'f', 2, 64)
			row[3] = strconv.FormatFloat(item.Forecast.IntervalLow, 'f', 2, 64)
			row[4] = strconv.FormatFloat(item.Forecast.IntervalHigh, 'f', 2, 64)
		}
		if item.Reorder != nil {
			row[6] = strconv.FormatFloat(item.Reorder.Quantity, 'f', 0, 64)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}
