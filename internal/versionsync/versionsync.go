// Package versionsync keeps the version of a packaging configuration in
// step with the version of the project manifest.
//
// Synchronization is a best-effort pre-build step: every failure leaves the
// secondary file untouched and is reported only at debug level. It never
// returns an error, so it can never block the build that follows it.
package versionsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/jmgilman/versync/internal/manifest"
	"github.com/jmgilman/versync/internal/slogger"
)

// Default paths, relative to the working directory of a Tauri src-tauri crate.
const (
	DefaultPrimary   = "../package.json"
	DefaultSecondary = "tauri.conf.json"
)

// defaultFileMode is used when the secondary file's mode cannot be read.
const defaultFileMode = 0o644

// ErrOutOfSync is returned by Check when the two versions differ.
var ErrOutOfSync = errors.New("versions out of sync")

// Outcome describes what a Sync call did.
type Outcome int

const (
	// OutcomeSkipped means a read, parse, field or write step failed and
	// the secondary file was left untouched.
	OutcomeSkipped Outcome = iota
	// OutcomeUnchanged means the versions already matched. No write happened.
	OutcomeUnchanged
	// OutcomeUpdated means the secondary file was rewritten.
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the outcome of a Sync call.
type Result struct {
	Outcome Outcome
	// Version is the primary version, empty when it could not be read.
	Version string
	// Previous is the secondary version before the call, empty when absent
	// or not a string.
	Previous string
}

// Synchronizer reconciles the version field of two documents on a filesystem.
type Synchronizer struct {
	fs    afero.Fs
	cargo io.Writer
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithCargoWarnings echoes the update notice to w as a cargo:warning
// directive, which Cargo surfaces when versync runs from a build script.
func WithCargoWarnings(w io.Writer) Option {
	return func(s *Synchronizer) {
		s.cargo = w
	}
}

// New creates a Synchronizer operating on fs.
func New(fs afero.Fs, opts ...Option) *Synchronizer {
	s := &Synchronizer{fs: fs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synchronize copies the version of the document at primary into the
// document at secondary on the OS filesystem. See Synchronizer.Sync.
func Synchronize(ctx context.Context, primary, secondary string, opts ...Option) {
	New(afero.NewOsFs(), opts...).Sync(ctx, primary, secondary)
}

// UpdateMessage is the notice emitted after secondary has been rewritten.
func UpdateMessage(secondary, version string) string {
	return fmt.Sprintf("Updated %s version to %s", filepath.Base(secondary), version)
}

// Sync sets the top-level version of secondary to that of primary if they
// differ. The secondary file is written at most once, and only when the
// version changes. Failures are logged at debug level and reported as
// OutcomeSkipped.
func (s *Synchronizer) Sync(ctx context.Context, primary, secondary string) Result {
	logger := slogger.L(ctx)

	version, err := s.readVersion(primary)
	if err != nil {
		logger.Debug("skipping version sync", "file", primary, "error", err)
		return Result{Outcome: OutcomeSkipped}
	}

	doc, err := s.readDocument(secondary)
	if err != nil {
		logger.Debug("skipping version sync", "file", secondary, "error", err)
		return Result{Outcome: OutcomeSkipped, Version: version}
	}

	previous, err := doc.Version()
	if err == nil && previous == version {
		logger.Debug("versions already match", "version", version)
		return Result{Outcome: OutcomeUnchanged, Version: version, Previous: previous}
	}

	if err := s.writeVersion(secondary, doc, version); err != nil {
		logger.Debug("skipping version sync", "file", secondary, "error", err)
		return Result{Outcome: OutcomeSkipped, Version: version, Previous: previous}
	}

	msg := UpdateMessage(secondary, version)
	logger.Info(msg)
	if s.cargo != nil {
		fmt.Fprintf(s.cargo, "cargo:warning=%s\n", msg)
	}
	return Result{Outcome: OutcomeUpdated, Version: version, Previous: previous}
}

// Status reports the versions found by Check.
type Status struct {
	Primary   string
	Secondary string
	// SecondaryMissing is true when the secondary has no string version.
	SecondaryMissing bool
	// Semver is true when Primary parses as a semantic version.
	Semver bool
}

// InSync returns true if the secondary already carries the primary version.
func (st *Status) InSync() bool {
	return !st.SecondaryMissing && st.Primary == st.Secondary
}

// Check compares the two documents without writing. Unlike Sync it returns
// read and parse errors, and ErrOutOfSync (with a non-nil Status) when the
// versions differ.
func (s *Synchronizer) Check(ctx context.Context, primary, secondary string) (*Status, error) {
	version, err := s.readVersion(primary)
	if err != nil {
		return nil, err
	}

	doc, err := s.readDocument(secondary)
	if err != nil {
		return nil, err
	}

	st := &Status{Primary: version}
	if _, err := semver.StrictNewVersion(version); err == nil {
		st.Semver = true
	} else {
		slogger.L(ctx).Debug("primary version is not strict semver", "version", version, "error", err)
	}

	previous, err := doc.Version()
	switch {
	case err == nil:
		st.Secondary = previous
	case errors.Is(err, manifest.ErrNoVersion), errors.Is(err, manifest.ErrVersionType):
		st.SecondaryMissing = true
	default:
		return nil, fmt.Errorf("read %s: %w", secondary, err)
	}

	if !st.InSync() {
		return st, ErrOutOfSync
	}
	return st, nil
}

// readVersion returns the top-level version string of the document at path.
func (s *Synchronizer) readVersion(path string) (string, error) {
	doc, err := s.readDocument(path)
	if err != nil {
		return "", err
	}

	version, err := doc.Version()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return version, nil
}

// readDocument reads and parses the document at path.
func (s *Synchronizer) readDocument(path string) (*manifest.Document, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// writeVersion sets version on doc and overwrites path with the result,
// keeping the file's permission bits.
func (s *Synchronizer) writeVersion(path string, doc *manifest.Document, version string) error {
	if err := doc.SetVersion(version); err != nil {
		return err
	}

	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	var mode os.FileMode = defaultFileMode
	if info, err := s.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := afero.WriteFile(s.fs, path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
