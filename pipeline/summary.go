package pipeline

import (
	"fmt"

	"github.com/giygas/cpic-brick/logging"
	"github.com/giygas/cpic-brick/table"
)

// AlleleFunctionColumns are the allele columns kept for function lookups
var AlleleFunctionColumns = []string{
	"id",
	"genesymbol",
	"name",
	"functionalstatus",
	"clinicalfunctionalstatus",
	"activityvalue",
	"strength",
}

// AlleleFunctionsName is the logical name of the allele function summary
const AlleleFunctionsName = "allele_functions"

// Summarize derives the summary outputs from the tables of a run. The
// allele table is projected on AlleleFunctionColumns and written as
// allele_functions. The recommendation table is already written in full so
// it only gets a log line.
func (p *Pipeline) Summarize(tables map[string]*table.Table) error {
	if allele, ok := tables["allele"]; ok {
		logging.Info("Creating allele function summary...")

		summary := allele.Project(AlleleFunctionColumns)
		if summary.NumColumns() == 0 {
			logging.Warn("Allele table has none of the function columns, summary not written",
				"columns", allele.ColumnNames())
		} else {
			if _, err := p.writer.Write(AlleleFunctionsName, summary); err != nil {
				return fmt.Errorf("failed to write allele function summary: %w", err)
			}
			logging.Info(fmt.Sprintf("Saved allele function summary: %d records", summary.NumRows()),
				"columns", summary.ColumnNames())
		}
	}

	if rec, ok := tables["recommendation"]; ok {
		logging.Info("Creating recommendation summary...")
		logging.Info(fmt.Sprintf("Recommendation data available with %d gene-drug recommendations", rec.NumRows()))
	}

	return nil
}
