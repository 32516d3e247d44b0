package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/raykavin/trendscan"
	"github.com/tidwall/buntdb"
)

const (
	keyPrefix = "report:"
	idIndex   = "id_index"
)

// ErrNotFound is returned by Get for an unknown report ID
var ErrNotFound = errors.New("report not found")

// Report is an archived analysis result
type Report struct {
	ID      int64             `json:"id"`
	SavedAt time.Time         `json:"savedAt"`
	Result  *trendscan.Result `json:"result"`
}

// ReportFilter selects archived reports
type ReportFilter func(Report) bool

// WithSymbol keeps the reports of one symbol
func WithSymbol(symbol string) ReportFilter {
	return func(r Report) bool {
		return r.Result != nil && r.Result.Symbol == symbol
	}
}

// WithStrategy keeps the reports of one strategy
func WithStrategy(kind string) ReportFilter {
	return func(r Report) bool {
		return r.Result != nil && string(r.Result.Strategy) == kind
	}
}

// BuntStorage archives analysis reports in BuntDB
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
	now    func() time.Time
}

// FromMemory creates an in-memory storage
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage opens a BuntDB archive and resumes ID numbering after the
// highest stored report
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(idIndex, keyPrefix+"*", buntdb.IndexJSON("id"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	storage := &BuntStorage{db: db, now: time.Now}

	err = db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(keyPrefix+"*", func(key, _ string) bool {
			id, err := strconv.ParseInt(strings.TrimPrefix(key, keyPrefix), 10, 64)
			if err == nil && id > storage.lastID {
				storage.lastID = id
			}
			return true
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to scan reports: %w", err)
	}

	return storage, nil
}

// getID generates a unique ID for reports
func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// Save archives a result and returns the stored report
func (b *BuntStorage) Save(result *trendscan.Result) (Report, error) {
	if result == nil {
		return Report{}, fmt.Errorf("cannot archive a nil result")
	}

	report := Report{
		ID:      b.getID(),
		SavedAt: b.now().UTC(),
		Result:  result,
	}

	err := b.db.Update(func(tx *buntdb.Tx) error {
		content, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}

		_, _, err = tx.Set(reportKey(report.ID), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store report: %w", err)
		}

		return nil
	})
	if err != nil {
		return Report{}, err
	}

	return report, nil
}

// Get loads one report by ID
func (b *BuntStorage) Get(id int64) (Report, error) {
	var report Report

	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(reportKey(id))
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(value), &report)
	})
	if err != nil {
		return Report{}, err
	}

	return report, nil
}

// Reports lists the archived reports, in save order, that pass every filter
func (b *BuntStorage) Reports(filters ...ReportFilter) ([]Report, error) {
	reports := make([]Report, 0)
	var decodeErr error

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(idIndex, func(key, value string) bool {
			var report Report
			if err := json.Unmarshal([]byte(value), &report); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal %s: %w", key, err)
				return false
			}

			for _, filter := range filters {
				if !filter(report) {
					return true
				}
			}

			reports = append(reports, report)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over reports: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return reports, nil
}

// Delete removes one report
func (b *BuntStorage) Delete(id int64) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(reportKey(id))
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return err
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func reportKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}
