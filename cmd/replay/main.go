package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/field-governor/internal/audit"
	"github.com/danielpatrickdp/field-governor/internal/certgate"
	"github.com/danielpatrickdp/field-governor/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to audit.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/audit.db")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	fixture, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	divergences, err := replay.Verify(fixture)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 2
	}

	summary := replay.Summarize(replay.Replay(fixture.ReplayAttempts()))
	printSummary(summary)

	if len(divergences) > 0 {
		printDivergences(divergences)
		return 1
	}
	fmt.Printf("all %d attempts reproduced their recorded decisions\n", summary.TotalAttempts)
	return 0
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath string) int {
	store, err := audit.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	rows, err := store.ListAttempts(1 << 20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list attempts: %v\n", err)
		return 2
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no certification attempts recorded")
		return 2
	}

	attempts := make([]replay.Attempt, len(rows))
	expected := make([]replay.FixtureExpected, len(rows))
	// Rows come back newest first; replay chronologically.
	for i, r := range rows {
		j := len(rows) - 1 - i
		attempts[j] = replay.Attempt{
			AttemptID:     r.AttemptID,
			FieldID:       r.FieldID,
			Category:      certgate.Category(r.Category),
			Precision:     r.Precision,
			FPR:           r.FPR,
			DupDetection:  r.DupDetection,
			ECE:           r.ECE,
			StabilityDays: r.StabilityDays,
			HumanApproved: r.HumanApproved,
			TotalFields:   r.TotalFields,
		}
		expected[j] = replay.FixtureExpected{
			AttemptID:   r.AttemptID,
			AllPass:     r.AllPass,
			GatesPassed: r.GatesPassed,
			Status:      r.Status,
		}
	}

	results := replay.Replay(attempts)
	printSummary(replay.Summarize(results))

	var divergences []replay.Divergence
	for i, res := range results {
		want := expected[i]
		if want.AllPass != res.Cert.AllPass ||
			want.GatesPassed != res.Cert.GatesPassed ||
			want.Status != string(res.Progression.Status) {
			divergences = append(divergences, replay.Divergence{
				AttemptID: res.AttemptID,
				Want:      want,
				Got:       res,
			})
		}
	}

	if len(divergences) > 0 {
		printDivergences(divergences)
		return 1
	}
	fmt.Printf("all %d attempts reproduced their recorded decisions\n", len(results))
	return 0
}

// #endregion db-mode

// #region output

func printSummary(s replay.Summary) {
	fmt.Printf("attempts=%d certified=%d rejected=%d\n", s.TotalAttempts, s.Certified, s.Rejected)
	for status, n := range s.ByStatus {
		fmt.Printf("  %-24s %d\n", status, n)
	}
}

func printDivergences(divs []replay.Divergence) {
	fmt.Fprintf(os.Stderr, "\n%d divergence(s):\n", len(divs))
	for _, d := range divs {
		fmt.Fprintf(os.Stderr, "  attempt %s:\n", shortID(d.AttemptID))
		fmt.Fprintf(os.Stderr, "    recorded: all_pass=%v gates=%d status=%s\n",
			d.Want.AllPass, d.Want.GatesPassed, d.Want.Status)
		fmt.Fprintf(os.Stderr, "    replayed: all_pass=%v gates=%d status=%s\n",
			d.Got.Cert.AllPass, d.Got.Cert.GatesPassed, d.Got.Progression.Status)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
