// Package worklog keeps one markdown file per orchestration run.
//
// A worklog has a short preamble (title, Created, Status, Rounds) followed by
// five sections in fixed order. The store creates records, keeps the
// latest.md alias pointing at the newest one and applies section-level
// mutations. Mutations for one file run strictly in call order; different
// files are independent.
package worklog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wasilibs/go-re2"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/fsutil"
	"github.com/aatumaykin/nexcrew/internal/lock"
	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/metrics"
)

var ErrNotFound = errors.New("worklog not found")

// Sections lists the section names of a new worklog in on-disk order.
var Sections = []string{
	constants.SectionPlan,
	constants.SectionVerificationCriteria,
	constants.SectionAgentStatusMatrix,
	constants.SectionExecutionLog,
	constants.SectionFinalSummary,
}

const fileTimeLayout = "20060102-150405.000000000"

var (
	statusLine = re2.MustCompile(`(?m)^Status:.*$`)
	roundsLine = re2.MustCompile(`(?m)^Rounds:.*$`)
)

// Publisher receives store events.
type Publisher interface {
	Publish(eventType string, payload map[string]any)
}

// Record identifies one worklog file.
type Record struct {
	ID      string
	Path    string
	Created time.Time
}

// Latest is the content behind the latest.md alias.
type Latest struct {
	Path    string
	Content string
}

// Store manages the worklog directory.
type Store struct {
	dir       string
	queue     *lock.Queue
	logger    *logger.Logger
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string

	// lastCreated is only touched inside the latest.md slot.
	lastCreated time.Time
}

// NewStore creates a store rooted at dir. The directory is created on the
// first Create.
func NewStore(dir string, queue *lock.Queue, log *logger.Logger) *Store {
	if queue == nil {
		queue = lock.NewQueue()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		dir:    dir,
		queue:  queue,
		logger: log.Named("worklog"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String()[:8] },
	}
}

// SetPublisher attaches an event sink.
func (s *Store) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetMetrics attaches collectors.
func (s *Store) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Dir returns the worklog directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) latestPath() string {
	return filepath.Join(s.dir, constants.WorklogLatestLink)
}

// Create writes a new worklog for the run described by summary and points
// latest.md at it. Creates are serialized on the alias, so the alias always
// names the record with the newest creation time.
func (s *Store) Create(ctx context.Context, summary string) (Record, error) {
	var (
		rec     Record
		written bool
	)
	err := s.queue.Do(s.latestPath(), func() error {
		created := s.now().UTC()
		if !created.After(s.lastCreated) {
			created = s.lastCreated.Add(time.Nanosecond)
		}
		s.lastCreated = created

		rec = Record{ID: s.newID(), Created: created}
		name := fmt.Sprintf("%s-%s.md", created.Format(fileTimeLayout), rec.ID)
		rec.Path = filepath.Join(s.dir, name)

		if err := fsutil.WriteFileAtomic(rec.Path, []byte(skeleton(summary, created)), 0644); err != nil {
			return err
		}
		written = true
		return relink(name, s.latestPath())
	})
	s.metrics.RecordWorklogMutation("create", err)

	log := s.logger.With(logger.Field{Key: "path", Value: rec.Path})
	switch {
	case err != nil && !written:
		log.ErrorCtx(ctx, "failed to create worklog", err)
		return Record{}, fmt.Errorf("failed to create worklog: %w", err)
	case err != nil:
		log.ErrorCtx(ctx, "failed to update latest alias", err)
		return rec, fmt.Errorf("failed to update %s: %w", constants.WorklogLatestLink, err)
	}

	log.InfoCtx(ctx, "worklog created", logger.Field{Key: "id", Value: rec.ID})
	s.publish(constants.EventWorklogCreated, map[string]any{"path": rec.Path, "id": rec.ID})
	return rec, nil
}

// relink replaces the alias at link with a relative symlink to target.
func relink(target, link string) error {
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Symlink(target, link)
}

// ReadLatest returns the newest worklog, or nil when the alias is missing
// or dangling.
func (s *Store) ReadLatest() (*Latest, error) {
	path, err := filepath.EvalSymlinks(s.latestPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve latest worklog: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read latest worklog: %w", err)
	}

	return &Latest{Path: path, Content: string(data)}, nil
}

// List returns every worklog in the directory, newest first.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list worklogs: %w", err)
	}

	var records []Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == constants.WorklogLatestLink || !strings.HasSuffix(name, ".md") {
			continue
		}
		rec := Record{Path: filepath.Join(s.dir, name)}
		stem := strings.TrimSuffix(name, ".md")
		if len(stem) > len(fileTimeLayout)+1 {
			if t, err := time.Parse(fileTimeLayout, stem[:len(fileTimeLayout)]); err == nil {
				rec.Created = t
				rec.ID = stem[len(fileTimeLayout)+1:]
			}
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return filepath.Base(a.Path) > filepath.Base(b.Path)
	})
	return records, nil
}

// AppendToSection adds content at the end of the named section. A missing
// section is appended to the end of the file.
func (s *Store) AppendToSection(ctx context.Context, path, section, content string) error {
	return s.mutate(ctx, "append", path, func(doc *Document) error {
		doc.AppendTo(section, content)
		return nil
	}, logger.Field{Key: "section", Value: section})
}

// ReplaceMatrix rewrites the agent status matrix from rows.
func (s *Store) ReplaceMatrix(ctx context.Context, path string, rows []MatrixRow) error {
	return s.mutate(ctx, "matrix", path, func(doc *Document) error {
		doc.Replace(constants.SectionAgentStatusMatrix, RenderMatrix(rows))
		return nil
	}, logger.Field{Key: "rows", Value: len(rows)})
}

// UpdateStatus rewrites the Status and Rounds lines. round is written as
// given, without checking it against the round limit.
func (s *Store) UpdateStatus(ctx context.Context, path, status string, round int) error {
	return s.mutate(ctx, "status", path, func(doc *Document) error {
		rounds := "Rounds: " + strconv.Itoa(round) + "/" + strconv.Itoa(constants.WorklogMaxRounds)
		doc.Preamble = setLine(doc.Preamble, statusLine, "Status: "+oneLine(status))
		doc.Preamble = setLine(doc.Preamble, roundsLine, rounds)
		return nil
	}, logger.Field{Key: "status", Value: status}, logger.Field{Key: "round", Value: round})
}

// setLine replaces the line matched by re, or adds it to the end of the
// preamble when absent.
func setLine(preamble string, re *re2.Regexp, line string) string {
	if re.MatchString(preamble) {
		return re.ReplaceAllLiteralString(preamble, line)
	}
	return strings.TrimRight(preamble, "\n") + "\n" + line + "\n\n"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// mutate runs fn against the parsed file at path inside the path's queue
// slot and writes the result back.
func (s *Store) mutate(ctx context.Context, op, path string, fn func(*Document) error, fields ...logger.Field) error {
	log := s.logger.With(logger.Field{Key: "path", Value: path}, logger.Field{Key: "op", Value: op})

	err := s.queue.Do(path, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return fmt.Errorf("failed to read worklog: %w", err)
		}

		doc := Parse(string(data))
		if err := fn(doc); err != nil {
			return err
		}

		return fsutil.WriteFileAtomic(path, []byte(doc.String()), 0644)
	})
	s.metrics.RecordWorklogMutation(op, err)

	if err != nil {
		log.ErrorCtx(ctx, "worklog mutation failed", err, fields...)
		return fmt.Errorf("worklog %s: %w", op, err)
	}

	log.DebugCtx(ctx, "worklog updated", fields...)
	s.publish(constants.EventWorklogUpdated, map[string]any{"path": path, "op": op})
	return nil
}

func (s *Store) publish(eventType string, payload map[string]any) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, payload)
	}
}

func skeleton(summary string, created time.Time) string {
	doc := &Document{
		Preamble: fmt.Sprintf("# Worklog: %s\n\nCreated: %s\nStatus: %s\nRounds: 0/%d\n\n",
			oneLine(summary),
			created.Format(time.RFC3339),
			constants.WorklogInitialStatus,
			constants.WorklogMaxRounds),
	}
	for i, name := range Sections {
		body := ""
		if name == constants.SectionAgentStatusMatrix {
			body = "\n" + RenderMatrix(nil)
		}
		if i < len(Sections)-1 {
			body += "\n"
		}
		doc.Sections = append(doc.Sections, Section{Name: name, Body: body})
	}
	return doc.String()
}
