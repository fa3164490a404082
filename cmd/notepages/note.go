package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-notepages/internal/yamlutil"
)

// Sentinel errors for note input.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadNote         = errors.New("failed to read note")
	ErrEmptyNote        = errors.New("note has no content")
	ErrInvalidExtension = errors.New("unsupported note extension")
)

// stdinName is the input path that reads a note from standard input.
const stdinName = "-"

// Note is one rewritten note. Structured files carry a title and abstract;
// plain text files are content only.
type Note struct {
	Title    string `yaml:"title"`
	Content  string `yaml:"content"`
	Abstract string `yaml:"abstract"`
}

// noteExtensions lists the file types discoverNotes picks up.
var noteExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
	".txt":  true,
	".md":   true,
}

// parseNote decodes data according to the extension of name.
// YAML and JSON are structured; anything else is taken as the content.
func parseNote(name string, data []byte) (*Note, error) {
	var n Note
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyNote, name)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		if err := yamlutil.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadNote, name, err)
		}
	default:
		n.Content = string(data)
	}

	if strings.TrimSpace(n.Content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyNote, name)
	}
	return &n, nil
}

// readNote reads and parses the note at path, or standard input for "-".
func readNote(path string, stdin io.Reader) (*Note, error) {
	var r io.Reader = stdin
	if path != stdinName {
		f, err := os.Open(path) // #nosec G304 -- discovered path
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadNote, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := yamlutil.ReadLimited(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadNote, path, err)
	}
	return parseNote(path, data)
}

// NoteJob is one note to render and where its pages go.
type NoteJob struct {
	InputPath string
	OutputDir string
	BaseName  string
}

// discoverNotes finds the notes under input. A directory is walked
// recursively and its layout is mirrored under outputDir.
func discoverNotes(input, outputDir, stdinBase string) ([]NoteJob, error) {
	if input == stdinName {
		if outputDir == "" {
			outputDir = "."
		}
		if stdinBase == "" {
			stdinBase = "note"
		}
		return []NoteJob{{InputPath: stdinName, OutputDir: outputDir, BaseName: stdinBase}}, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateNoteExtension(input); err != nil {
			return nil, err
		}
		return []NoteJob{newJob(input, outputDir, "")}, nil
	}

	var jobs []NoteJob
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !noteExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		jobs = append(jobs, newJob(path, outputDir, input))
		return nil
	})
	return jobs, err
}

// newJob derives the output location of a note.
func newJob(path, outputDir, baseInputDir string) NoteJob {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	job := NoteJob{InputPath: path, BaseName: base}

	switch {
	case outputDir == "":
		job.OutputDir = filepath.Dir(path)
	case baseInputDir != "":
		rel, err := filepath.Rel(baseInputDir, filepath.Dir(path))
		if err != nil {
			rel = "."
		}
		job.OutputDir = filepath.Join(outputDir, rel)
	default:
		job.OutputDir = outputDir
	}
	return job
}

// validateNoteExtension checks that path is a supported note file.
func validateNoteExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !noteExtensions[ext] {
		return fmt.Errorf("%w: got %q (use .yaml, .yml, .json, .txt or .md)", ErrInvalidExtension, ext)
	}
	return nil
}
