// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/cleaner"
	"github.com/customer-churn/data-pipeline/pkg/config"
	"github.com/customer-churn/data-pipeline/pkg/ingest"
	"github.com/customer-churn/data-pipeline/pkg/loader"
	"github.com/customer-churn/data-pipeline/pkg/model"
	"github.com/customer-churn/data-pipeline/pkg/modeler"
	"github.com/customer-churn/data-pipeline/pkg/validator"
	"github.com/customer-churn/data-pipeline/pkg/verifier"
)

// Runner orchestrates one batch pipeline run:
// ingest -> profile -> validate -> clean -> model -> verify -> persist.
// The run is single-threaded and all-or-nothing: every fatal error aborts
// before the persisters are reached, so a failed run leaves previously
// persisted tables untouched.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger

	schema *model.Schema
	star   *model.StarSchema

	reader     *ingest.Reader
	validator  *validator.Validator
	cleaner    *cleaner.Cleaner
	modeler    *modeler.Modeler
	verifier   *verifier.Verifier
	persisters []loader.Persister

	// Set when a database destination is configured; enables post-load
	// verification of the persisted tables
	db *sqlx.DB
}

// NewRunner creates a runner over the fixed telco churn schema and star
// mapping, with a CSV persister always attached
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		logger:    logger,
		schema:    model.TelcoChurnSchema(),
		star:      model.TelcoStarSchema(),
		reader:    ingest.NewReader(cfg.CSVDelimiter, logger.Named("ingest")),
		validator: validator.NewValidator(logger.Named("validator")),
		cleaner:   cleaner.NewCleaner(logger.Named("cleaner")),
		modeler:   modeler.NewModeler(logger.Named("modeler")),
		verifier:  verifier.NewVerifier(logger.Named("verifier")),
		persisters: []loader.Persister{
			loader.NewCSVPersister(cfg.OutputDir, cfg.CSVDelimiter, logger.Named("loader")),
		},
	}
}

// WithPersister appends an additional persister and returns the runner
func (r *Runner) WithPersister(p loader.Persister) *Runner {
	r.persisters = append(r.persisters, p)
	return r
}

// WithDatabase attaches a database handle for post-load verification
func (r *Runner) WithDatabase(db *sqlx.DB) *Runner {
	r.db = db
	return r
}

// WithSchemas overrides the flat schema and star mapping
func (r *Runner) WithSchemas(schema *model.Schema, star *model.StarSchema) *Runner {
	r.schema = schema
	r.star = star
	return r
}

// Run executes one pipeline run. The returned result is always populated;
// the error is the fatal failure that aborted the run, if any.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := NewRunResult()
	r.logger.Info("Starting pipeline run",
		zap.String("run_id", result.RunID),
		zap.String("input", r.cfg.InputPath))

	cleanedTable, err := r.prepare(ctx, result)
	if err != nil {
		return r.abort(result, err)
	}

	star, err := r.buildAndVerify(result, cleanedTable)
	if err != nil {
		return r.abort(result, err)
	}

	if err := r.persist(ctx, result, cleanedTable, star); err != nil {
		return r.abort(result, err)
	}

	result.Complete(true)
	r.logger.Info("Pipeline run completed",
		zap.String("run_id", result.RunID),
		zap.Duration("duration", result.Duration),
		zap.Int("rows", result.RowsCleaned),
		zap.Strings("tables", result.TablesPersisted))
	return result, nil
}

// prepare covers the read-only stages: ingest, profile, validate, clean
func (r *Runner) prepare(ctx context.Context, result *RunResult) (*model.Table, error) {
	start := time.Now()
	raw, err := r.reader.Read(r.cfg.InputPath)
	if err != nil {
		return nil, stageError(result, "ingest", err)
	}
	result.RowsRead = raw.RowCount()
	result.RecordStage("ingest", start)

	ingest.Profile(raw, r.logger.Named("profile"))

	start = time.Now()
	report, err := r.validator.Validate(raw, r.schema)
	if err != nil {
		return nil, stageError(result, "validate", err)
	}
	for _, warning := range report.TypeWarnings {
		result.AddWarning(warning)
	}
	for _, col := range report.UnknownColumns {
		result.AddWarning(fmt.Sprintf("undeclared column %q passed through", col))
	}
	result.RecordStage("validate", start)

	if err := ctx.Err(); err != nil {
		return nil, stageError(result, "validate", err)
	}

	start = time.Now()
	cleanResult, err := r.cleaner.Clean(raw, r.schema)
	if err != nil {
		return nil, stageError(result, "clean", err)
	}
	result.RowsCleaned = cleanResult.Table.RowCount()
	result.RowsDropped = cleanResult.RowsDropped
	result.DuplicatesDropped = cleanResult.DuplicatesDropped
	result.CleaningOperations = cleanResult.Operations
	result.RecordStage("clean", start)

	return cleanResult.Table, nil
}

// buildAndVerify runs the core transform and checks its invariants
func (r *Runner) buildAndVerify(result *RunResult, cleaned *model.Table) (*modeler.StarModel, error) {
	start := time.Now()
	star, err := r.modeler.Build(cleaned, r.star)
	if err != nil {
		return nil, stageError(result, "model", err)
	}
	result.RecordStage("model", start)

	start = time.Now()
	report, err := r.verifier.VerifyModel(cleaned, star)
	if err != nil {
		return nil, stageError(result, "verify", err)
	}
	if !report.OK() {
		err := fmt.Errorf("model verification found %d discrepancies, first: %s",
			len(report.Discrepancies), report.Discrepancies[0].Detail)
		return nil, stageError(result, "verify", err)
	}
	result.RecordStage("verify", start)

	return star, nil
}

// persist is the only stage with side effects: the cleaned flat table and
// every star table are written, then the persisted tables are verified
// when a database destination is attached
func (r *Runner) persist(ctx context.Context, result *RunResult, cleaned *model.Table, star *modeler.StarModel) error {
	start := time.Now()

	if r.cfg.CleanedOutput != "" {
		if err := loader.WriteTableCSV(r.cfg.CleanedOutput, cleaned, r.cfg.CSVDelimiter); err != nil {
			return stageError(result, "persist", err)
		}
	}

	for _, p := range r.persisters {
		if err := p.Persist(ctx, star); err != nil {
			return stageError(result, "persist", err)
		}
	}
	for _, table := range star.Tables() {
		result.TablesPersisted = append(result.TablesPersisted, table.Name)
	}
	result.RecordStage("persist", start)

	if r.db != nil {
		start = time.Now()
		report, err := r.verifier.VerifyPersisted(ctx, r.db, star)
		if err != nil {
			return stageError(result, "verify_persisted", err)
		}
		if !report.OK() {
			err := fmt.Errorf("persisted data verification found %d discrepancies, first: %s",
				len(report.Discrepancies), report.Discrepancies[0].Detail)
			return stageError(result, "verify_persisted", err)
		}
		result.RecordStage("verify_persisted", start)
	}

	return nil
}

// abort finalizes a failed run
func (r *Runner) abort(result *RunResult, err error) (*RunResult, error) {
	result.Complete(false)
	last := result.Errors[len(result.Errors)-1]
	r.logger.Error("Pipeline run aborted",
		zap.String("run_id", result.RunID),
		zap.String("stage", last.Stage),
		zap.String("category", last.Category.String()),
		zap.Error(err))
	return result, err
}

// stageError records the failure on the result and returns it unchanged
func stageError(result *RunResult, stage string, err error) error {
	result.AddError(NewErrorRecord(stage, err))
	return err
}
