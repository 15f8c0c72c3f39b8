package db

import (
	"context" // Cancellation for schema work
	"errors"  // Sentinel errors
	"fmt"     // Error wrapping

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Special targets accepted by Upgrade and Downgrade
const (
	TargetHead     = "head" // Latest revision
	TargetBase     = "base" // Empty schema
	TargetPrevious = "-1"   // One step back from the current revision
)

// ErrUnknownRevision is returned when a revision id is not part of the chain
var ErrUnknownRevision = errors.New("unknown revision")

// Revision is one step of the linear schema history
type Revision struct {
	ID           string               // Revision identifier
	DownRevision string               // Predecessor, empty for the first revision
	Message      string               // Human readable summary
	Upgrade      func(*gorm.DB) error // Forward step, runs inside a transaction
	Downgrade    func(*gorm.DB) error // Backward step, runs inside a transaction
}

// schemaRevision stores the revision the database is at
type schemaRevision struct {
	VersionNum string `gorm:"primaryKey;size:32"` // Current revision id
}

// TableName keeps the bookkeeping table name stable
func (schemaRevision) TableName() string {
	return "schema_revision"
}

// Runner applies revisions against a database
type Runner struct {
	db    *gorm.DB   // Target database
	chain []Revision // Validated linear history, oldest first
}

// NewRunner validates the revision chain and binds it to a database
func NewRunner(db *gorm.DB, revisions []Revision) (*Runner, error) {
	if err := validateChain(revisions); err != nil {
		return nil, err
	}
	return &Runner{db: db, chain: revisions}, nil
}

// History returns the revisions oldest first
func (r *Runner) History() []Revision {
	out := make([]Revision, len(r.chain))
	copy(out, r.chain)
	return out
}

// Current returns the applied revision id, empty when the schema is at base
func (r *Runner) Current(ctx context.Context) (string, error) {
	tx := r.db.WithContext(ctx)
	// Bookkeeping table is created lazily
	if err := tx.AutoMigrate(&schemaRevision{}); err != nil {
		return "", fmt.Errorf("prepare revision table: %w", err)
	}
	var rows []schemaRevision
	if err := tx.Find(&rows).Error; err != nil {
		return "", fmt.Errorf("read revision: %w", err)
	}
	switch len(rows) {
	case 0:
		return "", nil
	case 1:
		return rows[0].VersionNum, nil
	default:
		return "", fmt.Errorf("revision table holds %d rows, expected at most one", len(rows))
	}
}

// Upgrade applies every revision after the current one up to target
// (TargetHead or a revision id). It returns the ids applied.
func (r *Runner) Upgrade(ctx context.Context, target string) ([]string, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}
	steps, err := planUpgrade(r.chain, current, target)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, step := range steps {
		if err := r.apply(ctx, step.Upgrade, step.ID); err != nil {
			return applied, fmt.Errorf("upgrade %s: %w", step.ID, err)
		}
		logrus.WithFields(logrus.Fields{
			"revision": step.ID,
			"revises":  step.DownRevision,
			"message":  step.Message,
		}).Info("Applied upgrade")
		applied = append(applied, step.ID)
	}
	return applied, nil
}

// Downgrade reverts revisions down to target (TargetBase, TargetPrevious or a
// revision id, which stays applied). It returns the ids reverted.
func (r *Runner) Downgrade(ctx context.Context, target string) ([]string, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}
	steps, err := planDowngrade(r.chain, current, target)
	if err != nil {
		return nil, err
	}

	var reverted []string
	for _, step := range steps {
		if err := r.apply(ctx, step.Downgrade, step.DownRevision); err != nil {
			return reverted, fmt.Errorf("downgrade %s: %w", step.ID, err)
		}
		logrus.WithFields(logrus.Fields{
			"revision": step.ID,
			"now_at":   step.DownRevision,
		}).Info("Applied downgrade")
		reverted = append(reverted, step.ID)
	}
	return reverted, nil
}

// apply runs one schema step and records the revision it leaves the database
// at, both in a single transaction
func (r *Runner) apply(ctx context.Context, step func(*gorm.DB) error, revision string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := step(tx); err != nil {
			return err
		}
		return setRevision(tx, revision)
	})
}

func setRevision(tx *gorm.DB, id string) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&schemaRevision{}).Error; err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return tx.Create(&schemaRevision{VersionNum: id}).Error
}

func validateChain(revisions []Revision) error {
	seen := make(map[string]bool, len(revisions))
	for i, rev := range revisions {
		if rev.ID == "" {
			return fmt.Errorf("revision #%d has no id", i)
		}
		if seen[rev.ID] {
			return fmt.Errorf("revision %s appears twice", rev.ID)
		}
		seen[rev.ID] = true

		want := ""
		if i > 0 {
			want = revisions[i-1].ID
		}
		if rev.DownRevision != want {
			return fmt.Errorf("revision %s revises %q, expected %q", rev.ID, rev.DownRevision, want)
		}
		if rev.Upgrade == nil || rev.Downgrade == nil {
			return fmt.Errorf("revision %s must define upgrade and downgrade", rev.ID)
		}
	}
	return nil
}

// indexOf maps a revision id to its chain position, -1 meaning base
func indexOf(chain []Revision, id string) (int, error) {
	if id == "" || id == TargetBase {
		return -1, nil
	}
	for i, rev := range chain {
		if rev.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownRevision, id)
}

func planUpgrade(chain []Revision, current, target string) ([]Revision, error) {
	from, err := indexOf(chain, current)
	if err != nil {
		return nil, err
	}
	to := len(chain) - 1
	if target != TargetHead {
		if to, err = indexOf(chain, target); err != nil {
			return nil, err
		}
	}
	if to < from {
		return nil, fmt.Errorf("target %s is behind current revision %s, use downgrade", target, current)
	}
	return chain[from+1 : to+1], nil
}

func planDowngrade(chain []Revision, current, target string) ([]Revision, error) {
	from, err := indexOf(chain, current)
	if err != nil {
		return nil, err
	}
	var to int
	switch target {
	case TargetPrevious:
		if from < 0 {
			return nil, nil
		}
		to = from - 1
	default:
		if to, err = indexOf(chain, target); err != nil {
			return nil, err
		}
	}
	if to > from {
		return nil, fmt.Errorf("target %s is ahead of current revision %s, use upgrade", target, current)
	}

	steps := make([]Revision, 0, from-to)
	for i := from; i > to; i-- {
		steps = append(steps, chain[i])
	}
	return steps, nil
}
