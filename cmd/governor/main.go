package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/field-governor/internal/audit"
	"github.com/danielpatrickdp/field-governor/internal/certgate"
	"github.com/danielpatrickdp/field-governor/internal/freeze"
	"github.com/danielpatrickdp/field-governor/internal/isolation"
	"github.com/danielpatrickdp/field-governor/internal/ladder"
	"github.com/danielpatrickdp/field-governor/internal/ledger"
	"github.com/danielpatrickdp/field-governor/internal/modelock"
	"github.com/danielpatrickdp/field-governor/internal/progression"
	"github.com/danielpatrickdp/field-governor/internal/seal"
	"github.com/danielpatrickdp/field-governor/internal/supervisor"
)

// #region governor
// governor bundles the per-process singleton resources, constructed once
// here and passed by handle.
type governor struct {
	dir    string
	ledger *ledger.Ledger
	ladder *ladder.Ladder
	mode   *modelock.Lock
	super  *supervisor.Supervisor
	guard  *isolation.Guard
	frost  *freeze.Guard
	trail  *audit.Store
}

func (g *governor) save() {
	if err := g.ledger.Save(filepath.Join(g.dir, "ledger.json")); err != nil {
		log.Printf("[GOV] ledger save: %v", err)
	}
	if err := g.ladder.Save(filepath.Join(g.dir, "ladder.json")); err != nil {
		log.Printf("[GOV] ladder save: %v", err)
	}
	if err := g.mode.Save(filepath.Join(g.dir, "mode.json")); err != nil {
		log.Printf("[GOV] mode save: %v", err)
	}
}

// #endregion governor

// #region main
func main() {
	dir := envOr("GOVERNOR_DIR", "governor_state")
	dbPath := envOr("GOVERNOR_DB", filepath.Join(dir, "audit.db"))

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("state dir: %v", err)
	}

	trail, err := audit.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open audit store: %v", err)
	}
	defer trail.Close()

	sealer, err := seal.NewSealer(filepath.Join(dir, ".seal_key"))
	if err != nil {
		log.Fatalf("failed to load seal key: %v", err)
	}

	g := &governor{
		dir:   dir,
		mode:  loadMode(dir),
		super: supervisor.NewSupervisor(sealer),
		guard: isolation.NewGuard(),
		frost: freeze.NewGuard(),
		trail: trail,
	}
	g.ledger, g.ladder = loadCurriculum(dir)
	g.ledger.AttachAudit(trail)
	g.super.AttachAudit(trail)

	fmt.Println("Field Governor ready.")
	fmt.Printf("  State: %s | Audit: %s\n", dir, dbPath)
	fmt.Println("Commands: status, metrics, certify, approve, advance, unlock,")
	fmt.Println("          freeze, merge, batch, train, hunt, idle, task,")
	fmt.Println("          score, alert, autonomy, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		g.dispatch(strings.Fields(line))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion main

// #region bootstrap
// loadCurriculum restores persisted state or seeds a fresh ledger from
// the default curriculum.
func loadCurriculum(dir string) (*ledger.Ledger, *ladder.Ladder) {
	var led *ledger.Ledger
	if l, err := ledger.Load(filepath.Join(dir, "ledger.json")); err == nil {
		led = l
	} else {
		log.Println("[GOV] no ledger found, seeding from curriculum")
		led = ledger.NewLedger()
		for _, e := range ladder.DefaultCurriculum() {
			if _, err := led.RegisterField(e.Name, e.Category); err != nil {
				log.Fatalf("seed ledger: %v", err)
			}
		}
	}

	var lad *ladder.Ladder
	if l, err := ladder.Load(filepath.Join(dir, "ladder.json")); err == nil {
		lad = l
	} else {
		lad = ladder.NewLadder()
	}
	return led, lad
}

func loadMode(dir string) *modelock.Lock {
	if l, err := modelock.Load(filepath.Join(dir, "mode.json")); err == nil {
		return l
	}
	return modelock.NewLock()
}

// #endregion bootstrap

// #region dispatch
func (g *governor) dispatch(args []string) {
	switch args[0] {
	case "status":
		g.cmdStatus()
	case "metrics":
		g.cmdMetrics(args[1:])
	case "certify":
		g.cmdCertify(args[1:])
	case "approve":
		g.cmdApprove(args[1:])
	case "advance":
		g.cmdAdvance(args[1:])
	case "unlock":
		g.cmdUnlock(args[1:])
	case "freeze":
		g.cmdFreeze(args[1:])
	case "merge":
		g.cmdMerge(args[1:])
	case "batch":
		g.cmdBatch(args[1:])
	case "train":
		g.report(g.mode.EnterTrain().Reason)
		g.save()
	case "hunt":
		g.report(g.mode.EnterHunt().Reason)
		g.save()
	case "idle":
		g.report(g.mode.EnterIdle().Reason)
		g.save()
	case "task":
		g.cmdTask(args[1:])
	case "score":
		g.cmdScore(args[1:])
	case "alert":
		g.cmdAlert(args[1:])
	case "autonomy":
		g.cmdAutonomy()
	default:
		fmt.Printf("unknown command %q\n", args[0])
	}
}

func (g *governor) report(msg string) {
	fmt.Println(msg)
}

// #endregion dispatch

// #region field-commands
func (g *governor) cmdStatus() {
	fmt.Printf("mode=%s tasks=%d | integrity=%.2f (%s) %s | violations=%d\n",
		g.mode.Mode(), g.mode.ActiveTasks(),
		g.super.Overall(), g.super.Status(), g.super.CurrentMode(),
		g.guard.Violations())
	fmt.Printf("ladder: active=%d certified=%d/%d\n",
		g.ladder.Active(), g.ladder.CertifiedCount(), ladder.TotalFields)
	for _, f := range g.ledger.Fields() {
		marker := " "
		if f.ID == g.ledger.ActiveField() {
			marker = "*"
		}
		fmt.Printf(" %s %2d %-32s %-22s p=%.3f ece=%.4f days=%d approved=%v\n",
			marker, f.ID, f.Name, f.State, f.Metrics.Precision, f.Metrics.ECE,
			f.StabilityDays, f.HumanApproved)
	}
}

func (g *governor) cmdMetrics(args []string) {
	if len(args) != 6 {
		fmt.Println("usage: metrics <field> <precision> <fpr> <dup> <ece> <stability_days>")
		return
	}
	idx := atoi(args[0])
	m := ledger.Metrics{
		Precision:    atof(args[1]),
		FPR:          atof(args[2]),
		DupDetection: atof(args[3]),
		ECE:          atof(args[4]),
	}
	days := atoi(args[5])
	if err := g.ledger.RecordMetrics(idx, m); err != nil {
		fmt.Println(err)
		return
	}
	if err := g.ledger.RecordStability(idx, days); err != nil {
		fmt.Println(err)
		return
	}
	_ = g.ladder.RecordMetrics(idx, m.Precision, m.FPR, m.DupDetection, m.ECE)
	_ = g.ladder.RecordStability(idx, days)
	g.save()
	fmt.Printf("field %d metrics recorded\n", idx)
}

func (g *governor) cmdCertify(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: certify <field>")
		return
	}
	idx := atoi(args[0])
	f, err := g.ledger.Field(idx)
	if err != nil {
		fmt.Println(err)
		return
	}

	res := certgate.Evaluate(certgate.ThresholdsFor(f.Category), certgate.Inputs{
		Precision:     f.Metrics.Precision,
		FPR:           f.Metrics.FPR,
		DupDetection:  f.Metrics.DupDetection,
		ECE:           f.Metrics.ECE,
		StabilityDays: f.StabilityDays,
		HumanApproved: f.HumanApproved,
	})
	prog := progression.Decide(progression.Input{
		FieldID:       f.ID,
		Certified:     res.AllPass,
		StabilityDays: f.StabilityDays,
		HumanOK:       f.HumanApproved,
		TotalFields:   ladder.TotalFields,
	})
	_ = g.trail.AppendAttempt(audit.AttemptRow{
		AttemptID:     uuid.NewString(),
		FieldID:       f.ID,
		Category:      string(f.Category),
		Precision:     f.Metrics.Precision,
		FPR:           f.Metrics.FPR,
		DupDetection:  f.Metrics.DupDetection,
		ECE:           f.Metrics.ECE,
		StabilityDays: f.StabilityDays,
		HumanApproved: f.HumanApproved,
		TotalFields:   ladder.TotalFields,
		AllPass:       res.AllPass,
		GatesPassed:   res.GatesPassed,
		Status:        string(prog.Status),
	})
	fmt.Printf("all_pass=%v gates_passed=%d/%d\n", res.AllPass, res.GatesPassed, certgate.GateCount)
	for _, fail := range res.Failures {
		fmt.Printf("  blocked: %s\n", fail)
	}
	if res.AllPass {
		if err := g.ladder.MarkCertified(idx); err != nil {
			fmt.Println(err)
			return
		}
		g.save()
	}
}

func (g *governor) cmdApprove(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: approve <field> <approver> [reason...]")
		return
	}
	idx := atoi(args[0])
	reason := strings.Join(args[2:], " ")
	eventID, err := g.ledger.Approve(idx, args[1], reason)
	if err != nil {
		fmt.Println(err)
		return
	}
	g.save()
	fmt.Printf("approval recorded, event %s\n", eventID)
}

func (g *governor) cmdAdvance(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: advance <field>")
		return
	}
	idx := atoi(args[0])
	f, err := g.ledger.Field(idx)
	if err != nil {
		fmt.Println(err)
		return
	}
	res := g.ledger.Transition(idx, f.State+1)
	fmt.Printf("%s: %s\n", res.Code, res.Reason)
	if res.Allowed {
		g.save()
	}
}

func (g *governor) cmdUnlock(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: unlock <field>")
		return
	}
	id := atoi(args[0])
	if g.ladder.Active() == -1 {
		res := g.ladder.Activate(id)
		fmt.Printf("%s: %s\n", res.Code, res.Reason)
		if res.Allowed {
			g.save()
		}
		return
	}
	res := g.ladder.TryUnlockNext(id)
	fmt.Printf("%s: %s\n", res.Code, res.Reason)
	if res.Allowed || res.Code == ladder.CodeAllFieldsComplete {
		g.save()
	}
}

// #endregion field-commands

// #region freeze-commands
func (g *governor) cmdFreeze(args []string) {
	if len(args) != 3 {
		fmt.Println("usage: freeze <field> <weight_hash> <feature_dims>")
		return
	}
	idx := atoi(args[0])
	f, err := g.ledger.Field(idx)
	if err != nil {
		fmt.Println(err)
		return
	}
	if f.State != ledger.StateCertified {
		fmt.Printf("field %d is %s; freezing requires CERTIFIED\n", idx, f.State)
		return
	}
	ok := g.frost.Freeze(idx, args[1], f.Metrics.ECE, f.Metrics.Precision, f.Metrics.FPR, atoi(args[2]))
	if !ok {
		fmt.Printf("field %d already frozen\n", idx)
		return
	}
	res := g.ledger.Transition(idx, ledger.StateFrozen)
	fmt.Printf("%s: %s\n", res.Code, res.Reason)
	g.save()
}

func (g *governor) cmdMerge(args []string) {
	if len(args) != 6 {
		fmt.Println("usage: merge <field> <weight_hash> <precision> <fpr> <ece> <feature_dims>")
		return
	}
	idx := atoi(args[0])
	v := g.frost.ValidateMerge(idx, freeze.MergeCandidate{
		WeightHash:  args[1],
		Precision:   atof(args[2]),
		FPR:         atof(args[3]),
		ECE:         atof(args[4]),
		FeatureDims: atoi(args[5]),
	})
	fmt.Printf("allowed=%v: %s\n", v.Allowed, v.Reason)
	if v.RollbackTo != nil {
		fmt.Printf("  roll back to frozen weights %s\n", v.RollbackTo.WeightHash)
	}
}

func (g *governor) cmdBatch(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: batch <sample_field:generic|company> ...")
		return
	}
	active := g.ledger.ActiveField()
	if active == -1 {
		fmt.Println("no active field, nothing may train")
		return
	}
	f, _ := g.ledger.Field(active)

	tags := make([]isolation.BatchTag, 0, len(args))
	for _, a := range args {
		parts := strings.SplitN(a, ":", 2)
		tags = append(tags, isolation.BatchTag{
			FieldName: parts[0],
			IsGeneric: len(parts) < 2 || parts[1] != "company",
		})
	}
	res := g.guard.VerifyBatchPurity(f.Name, tags)
	fmt.Printf("pure=%v: %s\n", res.Pure, res.Reason)
	if !res.Pure {
		_ = g.trail.AppendViolation(audit.ViolationRow{
			ActiveField: f.Name,
			Code:        res.Code,
			Reason:      res.Reason,
			BatchSize:   res.BatchSize,
		})
	}
}

// #endregion freeze-commands

// #region supervisor-commands
func (g *governor) cmdTask(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: task <begin|end>")
		return
	}
	var err error
	if args[0] == "begin" {
		err = g.mode.BeginTask()
	} else {
		err = g.mode.EndTask()
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("active tasks: %d\n", g.mode.ActiveTasks())
}

func (g *governor) cmdScore(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: score <ml|dataset|storage|resource|log|governance> <0-100>")
		return
	}
	if err := g.super.SetScore(supervisor.Subsystem(args[0]), atof(args[1])); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("overall=%.2f status=%s\n", g.super.Overall(), g.super.Status())
}

func (g *governor) cmdAlert(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: alert <drift|dataset_skew|storage_warning> <on|off>")
		return
	}
	if err := g.super.SetAlert(supervisor.Alert(args[0]), args[1] == "on"); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("alert %s=%s\n", args[0], args[1])
}

func (g *governor) cmdAutonomy() {
	cond := g.super.EvaluateAutonomy()
	fmt.Printf("shadow_allowed=%v mode=%s overall=%.2f\n", cond.ShadowAllowed, cond.Mode, cond.Overall)
	fmt.Printf("  %s\n", cond.Reason)
}

// #endregion supervisor-commands

// #region parse-helpers
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// #endregion parse-helpers
