package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/field-governor/internal/audit"
	"github.com/danielpatrickdp/field-governor/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to audit.db")
	last := flag.Int("last", 10, "number of most recent attempts to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "exported certification attempts", "fixture description")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/audit.db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath string, last int, outPath, desc string) error {
	store, err := audit.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	rows, err := store.ListAttempts(last)
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no certification attempts recorded")
	}

	fixture := replay.Fixture{Description: desc}
	// Rows come back newest first; export chronologically.
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		fixture.Attempts = append(fixture.Attempts, replay.FixtureAttempt{
			AttemptID:     r.AttemptID,
			FieldID:       r.FieldID,
			Category:      r.Category,
			Precision:     r.Precision,
			FPR:           r.FPR,
			DupDetection:  r.DupDetection,
			ECE:           r.ECE,
			StabilityDays: r.StabilityDays,
			HumanApproved: r.HumanApproved,
			TotalFields:   r.TotalFields,
		})
		fixture.Expected = append(fixture.Expected, replay.FixtureExpected{
			AttemptID:   r.AttemptID,
			AllPass:     r.AllPass,
			GatesPassed: r.GatesPassed,
			Status:      r.Status,
		})
	}

	if err := replay.SaveFixture(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("exported %d attempts to %s\n", len(fixture.Attempts), outPath)
	return nil
}

// #endregion export
