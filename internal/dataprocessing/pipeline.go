package dataprocessing

import (
	"context"
	"log/slog"

	"qadash/internal/config"
	"qadash/internal/files"
	"qadash/pkg/contracts/domain"
)

// Pipeline wires source discovery, workbook parsing, registry construction
// and metric computation into one batch run. A run is side-effect-free on
// its inputs; re-running it is the only retry mechanism.
type Pipeline struct {
	locator *files.Locator
	parser  *Parser
	engine  *Engine
	hidden  []string
	logger  *slog.Logger
}

// NewPipeline builds a pipeline from configuration.
func NewPipeline(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		locator: files.NewLocator(cfg.Source.DataDir, logger),
		parser:  NewParser(cfg.Source.SheetName, logger),
		engine:  NewEngine(logger, EngineConfig{Workers: cfg.Engine.Workers}),
		hidden:  cfg.Source.HiddenPrograms,
		logger:  logger,
	}
}

// Run executes one full extraction and returns the per-program views in
// navigation order. Structural and integrity errors abort the run; the
// dashboard cannot partially render from a corrupt source.
func (p *Pipeline) Run(ctx context.Context) (*domain.Result, error) {
	source, err := p.locator.Latest()
	if err != nil {
		return nil, err
	}

	tables, err := p.parser.ParseFile(source)
	if err != nil {
		return nil, err
	}

	registry, err := BuildRegistry(tables)
	if err != nil {
		return nil, err
	}

	visible := FilterPrograms(registry, p.hidden)
	if len(visible) < len(registry) {
		p.logger.Info("hiding programs from result",
			slog.Int("hidden", len(registry)-len(visible)))
	}

	return p.engine.Compute(ctx, source, tables, visible)
}
