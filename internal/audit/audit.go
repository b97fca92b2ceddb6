package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
// Append-only by construction: this package issues INSERT and SELECT
// statements only. Rows are never updated or deleted.
const schema = `
CREATE TABLE IF NOT EXISTS integrity_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id     TEXT NOT NULL UNIQUE,
	prev_score   REAL NOT NULL,
	new_score    REAL NOT NULL,
	prev_status  TEXT NOT NULL,
	new_status   TEXT NOT NULL,
	mode         TEXT NOT NULL,
	digest       TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS containment_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id     TEXT NOT NULL UNIQUE,
	trigger      TEXT NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS approval_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id     TEXT NOT NULL UNIQUE,
	field_id     INTEGER NOT NULL,
	field_name   TEXT NOT NULL,
	approver     TEXT NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS isolation_violations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	active_field TEXT NOT NULL,
	code         TEXT NOT NULL,
	reason       TEXT,
	batch_size   INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cert_attempts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	attempt_id     TEXT NOT NULL UNIQUE,
	field_id       INTEGER NOT NULL,
	category       TEXT NOT NULL,
	precision_val  REAL NOT NULL,
	fpr            REAL NOT NULL,
	dup_detection  REAL NOT NULL,
	ece            REAL NOT NULL,
	stability_days INTEGER NOT NULL,
	human_approved INTEGER NOT NULL,
	total_fields   INTEGER NOT NULL,
	all_pass       INTEGER NOT NULL,
	gates_passed   INTEGER NOT NULL,
	status         TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
`

// #endregion schema

// #region store
// Store persists the governance audit trail in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. the
// fixture exporter).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region integrity
// AppendIntegrity writes one integrity event row.
func (s *Store) AppendIntegrity(row IntegrityRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO integrity_events (event_id, prev_score, new_score, prev_status, new_status, mode, digest, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.EventID, row.PrevScore, row.NewScore, row.PrevStatus, row.NewStatus,
		row.Mode, row.Digest, row.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append integrity event: %w", err)
	}
	return nil
}

// ListIntegrity returns the most recent integrity events, newest first.
func (s *Store) ListIntegrity(limit int) ([]IntegrityRow, error) {
	rows, err := s.db.Query(
		`SELECT event_id, prev_score, new_score, prev_status, new_status, mode, digest, created_at
		 FROM integrity_events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list integrity events: %w", err)
	}
	defer rows.Close()

	var out []IntegrityRow
	for rows.Next() {
		var r IntegrityRow
		var created string
		if err := rows.Scan(&r.EventID, &r.PrevScore, &r.NewScore, &r.PrevStatus,
			&r.NewStatus, &r.Mode, &r.Digest, &created); err != nil {
			return nil, fmt.Errorf("scan integrity event: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion integrity

// #region containment
// AppendContainment writes one containment event row.
func (s *Store) AppendContainment(row ContainmentRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO containment_events (event_id, trigger, reason, created_at)
		 VALUES (?, ?, ?, ?)`,
		row.EventID, row.Trigger, nullIfEmpty(row.Reason), row.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append containment event: %w", err)
	}
	return nil
}

// ListContainment returns the most recent containment events, newest first.
func (s *Store) ListContainment(limit int) ([]ContainmentRow, error) {
	rows, err := s.db.Query(
		`SELECT event_id, trigger, COALESCE(reason, ''), created_at
		 FROM containment_events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list containment events: %w", err)
	}
	defer rows.Close()

	var out []ContainmentRow
	for rows.Next() {
		var r ContainmentRow
		var created string
		if err := rows.Scan(&r.EventID, &r.Trigger, &r.Reason, &created); err != nil {
			return nil, fmt.Errorf("scan containment event: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion containment

// #region approval
// AppendApproval writes one human-approval event row.
func (s *Store) AppendApproval(row ApprovalRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO approval_events (event_id, field_id, field_name, approver, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		row.EventID, row.FieldID, row.FieldName, row.Approver,
		nullIfEmpty(row.Reason), row.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append approval event: %w", err)
	}
	return nil
}

// ListApprovals returns the most recent approval events, newest first.
func (s *Store) ListApprovals(limit int) ([]ApprovalRow, error) {
	rows, err := s.db.Query(
		`SELECT event_id, field_id, field_name, approver, COALESCE(reason, ''), created_at
		 FROM approval_events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list approval events: %w", err)
	}
	defer rows.Close()

	var out []ApprovalRow
	for rows.Next() {
		var r ApprovalRow
		var created string
		if err := rows.Scan(&r.EventID, &r.FieldID, &r.FieldName, &r.Approver, &r.Reason, &created); err != nil {
			return nil, fmt.Errorf("scan approval event: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion approval

// #region violations
// AppendViolation writes one isolation-violation row.
func (s *Store) AppendViolation(row ViolationRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO isolation_violations (active_field, code, reason, batch_size, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		row.ActiveField, row.Code, nullIfEmpty(row.Reason), row.BatchSize,
		row.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append violation: %w", err)
	}
	return nil
}

// ListViolations returns the most recent isolation violations, newest first.
func (s *Store) ListViolations(limit int) ([]ViolationRow, error) {
	rows, err := s.db.Query(
		`SELECT active_field, code, COALESCE(reason, ''), batch_size, created_at
		 FROM isolation_violations ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var out []ViolationRow
	for rows.Next() {
		var r ViolationRow
		var created string
		if err := rows.Scan(&r.ActiveField, &r.Code, &r.Reason, &r.BatchSize, &created); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion violations

// #region attempts
// AppendAttempt writes one certification attempt row: the exact inputs
// seen at decision time plus the recorded outcome.
func (s *Store) AppendAttempt(row AttemptRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO cert_attempts (attempt_id, field_id, category, precision_val, fpr, dup_detection, ece,
		 stability_days, human_approved, total_fields, all_pass, gates_passed, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.AttemptID, row.FieldID, row.Category, row.Precision, row.FPR, row.DupDetection, row.ECE,
		row.StabilityDays, boolToInt(row.HumanApproved), row.TotalFields,
		boolToInt(row.AllPass), row.GatesPassed, row.Status, row.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the most recent certification attempts, newest first.
func (s *Store) ListAttempts(limit int) ([]AttemptRow, error) {
	rows, err := s.db.Query(
		`SELECT attempt_id, field_id, category, precision_val, fpr, dup_detection, ece,
		 stability_days, human_approved, total_fields, all_pass, gates_passed, status, created_at
		 FROM cert_attempts ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRow
	for rows.Next() {
		var r AttemptRow
		var approved, allPass int
		var created string
		if err := rows.Scan(&r.AttemptID, &r.FieldID, &r.Category, &r.Precision, &r.FPR,
			&r.DupDetection, &r.ECE, &r.StabilityDays, &approved, &r.TotalFields,
			&allPass, &r.GatesPassed, &r.Status, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		r.HumanApproved = approved != 0
		r.AllPass = allPass != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion attempts

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
