package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "go-photo-context/internal/errors"
	"go-photo-context/internal/logger"
	"go-photo-context/pkg/models"

	"github.com/sirupsen/logrus"
)

// CanonicalFileName is the fixed name of the batch history document.
const CanonicalFileName = "image_analysis_history.json"

// Store maintains the append-only JSON history of processing batches inside a
// single output directory. Appends are serialized by a single-writer lock so
// concurrent batches never lose an update.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the output directory if needed and upgrades any
// legacy-shaped documents found there to the canonical shape.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewStoreWriteError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}
	s := &Store{dir: dir}
	s.upgradeLegacyFiles()
	return s, nil
}

// Dir returns the store's output directory.
func (s *Store) Dir() string {
	return s.dir
}

// upgradeLegacyFiles rewrites legacy-shaped documents in place as canonical
// documents so later reads and writes see a single schema. Unreadable files
// are logged and left alone.
func (s *Store) upgradeLegacyFiles() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logger.WithError(err).WithField("dir", s.dir).Warn("Could not scan store directory for legacy documents")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.WithError(err).WithField("file", entry.Name()).Warn("Could not read document during migration scan")
			continue
		}
		doc, _, kind, err := classifyDocument(data)
		if err != nil || kind != kindLegacy {
			continue
		}
		recomputeTotals(&doc)
		if err := s.writeDocument(path, doc); err != nil {
			logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to upgrade legacy document")
			continue
		}
		logger.WithFields(logrus.Fields{
			"file":    entry.Name(),
			"batches": len(doc.Batches),
			"images":  doc.TotalImagesProcessed,
		}).Info("Upgraded legacy history document")
	}
}

// Append loads the document at destination (default: the canonical history
// file), assigns the next batch id, appends the batch, recomputes the totals
// and writes the whole document back atomically. The returned path is the
// file written. The in-memory update is discarded if the write fails.
func (s *Store) Append(batch models.Batch, destination string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := destination
	if name == "" {
		name = CanonicalFileName
	}
	name = ensureJSONExt(name)
	path := filepath.Join(s.dir, name)

	doc := models.HistoryDocument{Batches: []models.Batch{}}
	if data, err := os.ReadFile(path); err == nil {
		loaded, _, kind, classifyErr := classifyDocument(data)
		switch {
		case classifyErr != nil:
			logger.WithError(classifyErr).WithField("file", name).Warn("Existing history file is not valid JSON, starting fresh")
		case kind == kindCanonical, kind == kindLegacy:
			doc = loaded
		default:
			logger.WithField("file", name).Warn("Existing file has unrecognized structure, starting fresh")
		}
	} else if !os.IsNotExist(err) {
		return "", apperrors.NewStoreWriteError(fmt.Sprintf("failed to read existing history file %s", name), err)
	}

	batch.BatchID = len(doc.Batches) + 1
	doc.Batches = append(doc.Batches, batch)
	recomputeTotals(&doc)
	doc.LastUpdated = models.NowISO()

	if err := s.writeDocument(path, doc); err != nil {
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"file":         name,
		"batch_id":     batch.BatchID,
		"batches":      len(doc.Batches),
		"total_images": doc.TotalImagesProcessed,
	}).Info("Batch appended to history")
	return path, nil
}

// ListAll flattens every batch's records from every recognized JSON document
// in the store directory. Documents that fail to parse are logged and
// skipped. The canonical history file is listed first, remaining files in
// name order, so downstream ranking has a stable candidate order.
func (s *Store) ListAll() ([]models.StoredRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.NewStoreReadError(fmt.Sprintf("failed to read store directory %s", s.dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == CanonicalFileName) != (names[j] == CanonicalFileName) {
			return names[i] == CanonicalFileName
		}
		return names[i] < names[j]
	})

	var out []models.StoredRecord
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.WithError(err).WithField("file", name).Warn("Could not read history document, skipping")
			continue
		}
		doc, single, kind, err := classifyDocument(data)
		if err != nil {
			logger.WithError(err).WithField("file", name).Warn("Could not parse history document, skipping")
			continue
		}
		switch kind {
		case kindCanonical, kindLegacy:
			for i := range doc.Batches {
				for _, record := range doc.Batches[i].Records {
					out = append(out, models.StoredRecord{
						Record:     record,
						BatchID:    doc.Batches[i].BatchID,
						SourceFile: name,
					})
				}
			}
		case kindSingle:
			out = append(out, models.StoredRecord{Record: single, SourceFile: name})
		default:
			logger.WithField("file", name).Debug("Skipping document with unrecognized structure")
		}
	}
	return out, nil
}

// SaveSingle writes one record as its own standalone JSON document. The
// default filename is derived from the current timestamp.
func (s *Store) SaveSingle(record models.AnalysisRecord, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("image_context_%s.json", time.Now().UTC().Format("20060102_150405"))
	}
	filename = ensureJSONExt(filename)
	path := filepath.Join(s.dir, filename)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", apperrors.NewStoreWriteError("failed to encode record", err)
	}
	if err := s.writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// writeDocument marshals the document human-indented and writes it atomically.
func (s *Store) writeDocument(path string, doc models.HistoryDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.NewStoreWriteError("failed to encode history document", err)
	}
	return s.writeAtomic(path, data)
}

// writeAtomic writes to a temp file in the same directory and renames it over
// the target, so readers never observe a partially written file.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("failed to create temp file for %s", filepath.Base(path)), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStoreWriteError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStoreWriteError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStoreWriteError(fmt.Sprintf("failed to replace %s", filepath.Base(path)), err)
	}
	return nil
}

func ensureJSONExt(name string) string {
	if !strings.HasSuffix(name, ".json") {
		return name + ".json"
	}
	return name
}
