package sequence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultExt is the extension selected when Options.Ext is empty.
const DefaultExt = ".jpg"

var (
	// ErrTargetExists is returned when a final name is held by a file that
	// is not part of the batch.
	ErrTargetExists = errors.New("target name already exists")

	// ErrFingerprintMismatch is returned by Undo when a file's content no
	// longer matches the journal.
	ErrFingerprintMismatch = errors.New("file content changed since rename")
)

// Options controls which files are selected and how they are numbered.
type Options struct {
	// Ext is the literal, case-sensitive suffix to select. Default ".jpg".
	Ext string

	// Start is the number given to the first file. Values below 1 mean 1.
	Start int

	// DryRun plans and reports without renaming anything.
	DryRun bool

	// JournalPath, when set, receives a YAML journal of the completed batch.
	JournalPath string
}

func (o Options) withDefaults() Options {
	if o.Ext == "" {
		o.Ext = DefaultExt
	}
	if o.Start < 1 {
		o.Start = 1
	}
	return o
}

// Rename is one planned or completed move inside a directory. Names are
// base names, never paths.
type Rename struct {
	From        string `json:"from" yaml:"from"`
	To          string `json:"to" yaml:"to"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// Plan is the ordered set of renames for one directory.
type Plan struct {
	Dir     string   `json:"dir"`
	Ext     string   `json:"ext"`
	Renames []Rename `json:"renames"`
}

// Count returns the number of selected files.
func (p *Plan) Count() int {
	return len(p.Renames)
}

// Result summarises a Run or Undo.
type Result struct {
	Dir string `json:"dir"`

	// Found is the number of selected files.
	Found int `json:"found"`

	// Renamed counts completed renames, including files whose final name
	// equals their original name.
	Renamed int `json:"renamed"`

	// Unchanged counts files that already had their final name.
	Unchanged int `json:"unchanged"`

	DryRun      bool     `json:"dry_run"`
	JournalPath string   `json:"journal_path,omitempty"`
	Renames     []Rename `json:"renames"`
}

// Renamer renames files on an afero filesystem.
type Renamer struct {
	fs afero.Fs

	// Out receives the human-readable progress lines ("Found N images.",
	// "Renaming complete."). Defaults to io.Discard.
	Out io.Writer
}

// NewRenamer returns a Renamer working on fs.
func NewRenamer(fs afero.Fs) *Renamer {
	return &Renamer{fs: fs, Out: io.Discard}
}

// Plan lists dir and assigns sequential names to the selected files.
// Nothing is modified.
func (r *Renamer) Plan(dir string, opts Options) (*Plan, error) {
	opts = opts.withDefaults()

	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	var names []string
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		if strings.HasSuffix(fi.Name(), opts.Ext) {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)

	renames := make([]Rename, len(names))
	for i, name := range names {
		renames[i] = Rename{
			From: name,
			To:   strconv.Itoa(opts.Start+i) + opts.Ext,
		}
	}

	return &Plan{Dir: dir, Ext: opts.Ext, Renames: renames}, nil
}

// Run plans dir, reports the count, applies the plan and writes the journal
// if one was requested.
func (r *Renamer) Run(ctx context.Context, dir string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	plan, err := r.Plan(dir, opts)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(r.Out, "Found %d images.\n", plan.Count())

	if opts.DryRun {
		for _, rn := range plan.Renames {
			fmt.Fprintf(r.Out, "%s -> %s\n", rn.From, rn.To)
		}
	}

	res, err := r.Apply(ctx, plan, opts)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun && opts.JournalPath != "" && plan.Count() > 0 {
		if err := WriteJournal(r.fs, opts.JournalPath, NewJournal(plan.Dir, plan.Ext, res.Renames)); err != nil {
			return res, err
		}
		res.JournalPath = opts.JournalPath
		log.Info().Str("journal", opts.JournalPath).Int("renames", res.Renamed).Msg("Wrote rename journal")
	}

	if opts.DryRun {
		fmt.Fprintln(r.Out, "Dry run complete, nothing renamed.")
	} else {
		fmt.Fprintln(r.Out, "Renaming complete.")
	}
	return res, nil
}

// Apply executes plan. Fingerprints are recorded when opts.JournalPath is
// set. With opts.DryRun the plan is returned as the result untouched.
func (r *Renamer) Apply(ctx context.Context, plan *Plan, opts Options) (*Result, error) {
	res := &Result{
		Dir:     plan.Dir,
		Found:   plan.Count(),
		DryRun:  opts.DryRun,
		Renames: plan.Renames,
	}
	for _, rn := range plan.Renames {
		if rn.From == rn.To {
			res.Unchanged++
		}
	}
	if opts.DryRun || plan.Count() == 0 {
		return res, nil
	}

	if err := r.checkTargets(plan.Dir, plan.Renames); err != nil {
		return nil, err
	}

	renames := make([]Rename, len(plan.Renames))
	copy(renames, plan.Renames)
	if opts.JournalPath != "" {
		for i := range renames {
			fp, err := Fingerprint(r.fs, filepath.Join(plan.Dir, renames[i].From))
			if err != nil {
				return nil, err
			}
			renames[i].Fingerprint = fp
		}
	}

	if err := r.move(ctx, plan.Dir, renames); err != nil {
		return nil, err
	}

	res.Renamed = len(renames)
	res.Renames = renames
	return res, nil
}

// checkTargets refuses a batch whose final names collide with files outside
// the batch.
func (r *Renamer) checkTargets(dir string, renames []Rename) error {
	selected := make(map[string]bool, len(renames))
	for _, rn := range renames {
		selected[rn.From] = true
	}

	for _, rn := range renames {
		if selected[rn.To] {
			continue
		}
		exists, err := afero.Exists(r.fs, filepath.Join(dir, rn.To))
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", rn.To, err)
		}
		if exists {
			return fmt.Errorf("%w: %s (would be replaced by %s)", ErrTargetExists, rn.To, rn.From)
		}
	}
	return nil
}

// move performs the two-phase rename. On failure every file is put back
// under its original name where possible.
func (r *Renamer) move(ctx context.Context, dir string, renames []Rename) error {
	temps := make([]string, len(renames))
	for i := range renames {
		tmp, err := r.tempName(dir, i)
		if err != nil {
			return err
		}
		temps[i] = tmp
	}

	for i, rn := range renames {
		if err := ctx.Err(); err != nil {
			return r.rollback(dir, renames, temps, i, 0, err)
		}
		if err := r.fs.Rename(filepath.Join(dir, rn.From), filepath.Join(dir, temps[i])); err != nil {
			return r.rollback(dir, renames, temps, i, 0, fmt.Errorf("failed to move %s aside: %w", rn.From, err))
		}
	}

	for i, rn := range renames {
		if err := ctx.Err(); err != nil {
			return r.rollback(dir, renames, temps, len(renames), i, err)
		}
		if err := r.fs.Rename(filepath.Join(dir, temps[i]), filepath.Join(dir, rn.To)); err != nil {
			return r.rollback(dir, renames, temps, len(renames), i, fmt.Errorf("failed to rename %s to %s: %w", rn.From, rn.To, err))
		}
		log.Debug().Str("from", rn.From).Str("to", rn.To).Msg("Renamed")
	}
	return nil
}

// rollback undoes a partial move. The first aside renames have reached
// their temporary name and the first final of those have reached their
// final name.
func (r *Renamer) rollback(dir string, renames []Rename, temps []string, aside, final int, cause error) error {
	errs := []error{cause}
	for i := 0; i < final; i++ {
		if err := r.fs.Rename(filepath.Join(dir, renames[i].To), filepath.Join(dir, temps[i])); err != nil {
			errs = append(errs, fmt.Errorf("rollback %s: %w", renames[i].To, err))
		}
	}
	for i := 0; i < aside; i++ {
		if err := r.fs.Rename(filepath.Join(dir, temps[i]), filepath.Join(dir, renames[i].From)); err != nil {
			errs = append(errs, fmt.Errorf("rollback %s: %w", renames[i].From, err))
		}
	}
	if len(errs) > 1 {
		log.Error().Err(errors.Join(errs[1:]...)).Str("dir", dir).Msg("Rollback incomplete")
	}
	return errors.Join(errs...)
}

// tempName picks an unused hidden name in dir for the i-th file.
func (r *Renamer) tempName(dir string, i int) (string, error) {
	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf(".seq-%d-%d-%d.tmp", os.Getpid(), i, attempt)
		exists, err := afero.Exists(r.fs, filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", name, err)
		}
		if !exists {
			return name, nil
		}
	}
}
