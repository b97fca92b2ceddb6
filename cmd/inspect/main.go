package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/field-governor/internal/audit"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to audit.db")
	last := flag.Int("last", 20, "show N most recent rows")
	kind := flag.String("kind", "integrity", "row kind: integrity, containment, approval, violation")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/audit.db [--last N] [--kind integrity|containment|approval|violation] [--json]")
		os.Exit(2)
	}

	store, err := audit.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(store, *kind, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(store *audit.Store, kind string, last int, jsonOut bool) error {
	switch kind {
	case "integrity":
		return runIntegrity(store, last, jsonOut)
	case "containment":
		return runContainment(store, last, jsonOut)
	case "approval":
		return runApprovals(store, last, jsonOut)
	case "violation":
		return runViolations(store, last, jsonOut)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
}

// #endregion main

// #region integrity

func runIntegrity(store *audit.Store, last int, jsonOut bool) error {
	rows, err := store.ListIntegrity(last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no integrity events found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %7s  %7s  %-8s  %-8s  %-14s  %s\n",
		"Event", "Prev", "New", "From", "To", "Mode", "Time")
	for _, r := range rows {
		fmt.Printf("%-10s  %7.2f  %7.2f  %-8s  %-8s  %-14s  %s\n",
			shortID(r.EventID), r.PrevScore, r.NewScore, r.PrevStatus, r.NewStatus,
			r.Mode, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion integrity

// #region containment

func runContainment(store *audit.Store, last int, jsonOut bool) error {
	rows, err := store.ListContainment(last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no containment events found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-18s  %-40s  %s\n", "Event", "Trigger", "Reason", "Time")
	for _, r := range rows {
		fmt.Printf("%-10s  %-18s  %-40s  %s\n",
			shortID(r.EventID), r.Trigger, clip(r.Reason, 40),
			r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion containment

// #region approvals

func runApprovals(store *audit.Store, last int, jsonOut bool) error {
	rows, err := store.ListApprovals(last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no approvals found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %3s  %-28s  %-24s  %s\n", "Event", "ID", "Field", "Approver", "Time")
	for _, r := range rows {
		fmt.Printf("%-10s  %3d  %-28s  %-24s  %s\n",
			shortID(r.EventID), r.FieldID, r.FieldName, r.Approver,
			r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion approvals

// #region violations

func runViolations(store *audit.Store, last int, jsonOut bool) error {
	rows, err := store.ListViolations(last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no isolation violations found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-28s  %-22s  %5s  %-40s  %s\n", "Active Field", "Code", "Batch", "Reason", "Time")
	for _, r := range rows {
		fmt.Printf("%-28s  %-22s  %5d  %-40s  %s\n",
			r.ActiveField, r.Code, r.BatchSize, clip(r.Reason, 40),
			r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion violations

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// #endregion output
