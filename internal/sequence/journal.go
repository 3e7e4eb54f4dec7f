package sequence

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

const journalVersion = 1

// Journal records a completed batch so it can be reversed.
type Journal struct {
	Version   int       `yaml:"version"`
	Dir       string    `yaml:"dir"`
	Ext       string    `yaml:"ext"`
	CreatedAt time.Time `yaml:"created_at"`
	Renames   []Rename  `yaml:"renames"`
}

// NewJournal builds a journal for renames completed in dir.
func NewJournal(dir, ext string, renames []Rename) *Journal {
	return &Journal{
		Version:   journalVersion,
		Dir:       dir,
		Ext:       ext,
		CreatedAt: time.Now().UTC(),
		Renames:   renames,
	}
}

// WriteJournal encodes j as YAML at path.
func WriteJournal(fs afero.Fs, path string, j *Journal) error {
	data, err := yaml.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// ReadJournal decodes the journal at path.
func ReadJournal(fs afero.Fs, path string) (*Journal, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var j Journal
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to decode journal %s: %w", path, err)
	}
	if j.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version %d", j.Version)
	}
	return &j, nil
}

// Fingerprint returns the xxh3-64 hash of the file's content as 16 hex digits.
func Fingerprint(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Undo reverses the batch recorded in the journal at journalPath and removes
// the journal. Every file must still carry the content it had when renamed.
func (r *Renamer) Undo(ctx context.Context, journalPath string) (*Result, error) {
	j, err := ReadJournal(r.fs, journalPath)
	if err != nil {
		return nil, err
	}

	reverse := make([]Rename, len(j.Renames))
	for i, rn := range j.Renames {
		reverse[i] = Rename{From: rn.To, To: rn.From, Fingerprint: rn.Fingerprint}
		if rn.Fingerprint == "" {
			continue
		}
		fp, err := Fingerprint(r.fs, filepath.Join(j.Dir, rn.To))
		if err != nil {
			return nil, err
		}
		if fp != rn.Fingerprint {
			return nil, fmt.Errorf("%w: %s", ErrFingerprintMismatch, rn.To)
		}
	}

	plan := &Plan{Dir: j.Dir, Ext: j.Ext, Renames: reverse}
	fmt.Fprintf(r.Out, "Found %d images.\n", plan.Count())

	res, err := r.Apply(ctx, plan, Options{Ext: j.Ext})
	if err != nil {
		return nil, err
	}

	if err := r.fs.Remove(journalPath); err != nil {
		log.Warn().Err(err).Str("journal", journalPath).Msg("Failed to remove journal after undo")
	}
	fmt.Fprintln(r.Out, "Renaming complete.")
	return res, nil
}
