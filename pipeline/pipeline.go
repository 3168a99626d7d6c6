// Package pipeline runs the CPIC pull: every endpoint is fetched, normalized
// and written in turn, then the summary tables are derived from the results.
// A failing endpoint is logged and skipped, it never stops the loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giygas/cpic-brick/cpic"
	"github.com/giygas/cpic-brick/interfaces"
	"github.com/giygas/cpic-brick/logging"
	"github.com/giygas/cpic-brick/metrics"
	"github.com/giygas/cpic-brick/table"
)

// Stages an endpoint can fail in
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageWrite     = "write"
)

// EndpointError records which stage of which endpoint failed
type EndpointError struct {
	Endpoint string
	Stage    string
	Err      error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Endpoint, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// Result is what a run produced. Tables only holds endpoints that returned
// at least one record and were written.
type Result struct {
	Tables   map[string]*table.Table
	Failures map[string]error
	Skipped  []string // endpoints that returned no records
}

// Pipeline wires the stages together using dependency injection
type Pipeline struct {
	fetcher   interfaces.Fetcher
	writer    interfaces.TableWriter
	validator interfaces.TableValidator
	endpoints []cpic.Endpoint
}

// New creates a pipeline over cpic.Endpoints
func New(fetcher interfaces.Fetcher, writer interfaces.TableWriter, validator interfaces.TableValidator) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		writer:    writer,
		validator: validator,
		endpoints: cpic.Endpoints,
	}
}

// WithEndpoints restricts the run to eps
func (p *Pipeline) WithEndpoints(eps []cpic.Endpoint) *Pipeline {
	p.endpoints = eps
	return p
}

// Run processes every endpoint once, in order
func (p *Pipeline) Run(ctx context.Context) *Result {
	result := &Result{
		Tables:   make(map[string]*table.Table),
		Failures: make(map[string]error),
	}

	logging.Info("Downloading CPIC pharmacogenomics data...", "endpoints", len(p.endpoints))
	start := time.Now()

	for _, ep := range p.endpoints {
		if ctx.Err() != nil {
			logging.Warn("Run cancelled, skipping remaining endpoints", "next", ep.Name, "error", ctx.Err())
			break
		}

		t, err := p.runEndpoint(ctx, ep)
		if err != nil {
			var stage string
			var epErr *EndpointError
			if errors.As(err, &epErr) {
				stage = epErr.Stage
			}
			metrics.EndpointFailures.WithLabelValues(ep.Name, stage).Inc()
			logging.Error(fmt.Sprintf("Error fetching %s", ep.Name), "endpoint", ep.Name, "stage", stage, "error", err)
			result.Failures[ep.Name] = err
			continue
		}

		if t == nil {
			result.Skipped = append(result.Skipped, ep.Name)
			continue
		}

		result.Tables[ep.Name] = t
	}

	logging.Info("Download completed",
		"duration", time.Since(start).String(),
		"tables", len(result.Tables),
		"failed", len(result.Failures),
		"skipped", len(result.Skipped),
	)

	return result
}

// runEndpoint returns a nil table without error when the endpoint has no
// records
func (p *Pipeline) runEndpoint(ctx context.Context, ep cpic.Endpoint) (*table.Table, error) {
	records, err := p.fetcher.Fetch(ctx, ep)
	if err != nil {
		return nil, &EndpointError{Endpoint: ep.Name, Stage: StageFetch, Err: err}
	}

	if len(records) == 0 {
		logging.Warn(fmt.Sprintf("No records for %s, nothing written", ep.Name), "endpoint", ep.Name)
		return nil, nil
	}

	t := table.Normalize(records)
	if err := p.validator.ValidateTable(t, len(records)); err != nil {
		return nil, &EndpointError{Endpoint: ep.Name, Stage: StageNormalize, Err: err}
	}

	report := p.validator.ReportTableQuality(ep.Name, t)
	if len(report.EmptyColumns) > 0 {
		logging.Warn("Columns without values", "endpoint", ep.Name, "count", len(report.EmptyColumns), "columns", report.EmptyColumns)
	}
	if len(report.UnflattenedColumns) > 0 {
		logging.Warn("Columns keep nested values after flattening", "endpoint", ep.Name, "columns", report.UnflattenedColumns)
	}
	if len(report.SuffixedColumns) > 0 {
		logging.Warn("Column names collided after normalization", "endpoint", ep.Name, "columns", report.SuffixedColumns)
	}

	if _, err := p.writer.Write(ep.Name, t); err != nil {
		return nil, &EndpointError{Endpoint: ep.Name, Stage: StageWrite, Err: err}
	}

	return t, nil
}
