package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	"sheetgrid/contracts"
)

// SheetRepository fronts the computation engine with named sheets and bbolt
// persistence (one bucket per sheet, key = canonical position label, value =
// the cell's rendered text). The engine is single-threaded by design, so
// every call runs under one repository-wide mutex.
type SheetRepository struct {
	db                *bbolt.DB
	webhookDispatcher contracts.WebhookDispatcher

	mu     sync.Mutex
	sheets map[string]*Sheet
}

func NewSheetRepository(db *bbolt.DB, webhookDispatcher contracts.WebhookDispatcher) *SheetRepository {
	return &SheetRepository{
		db:                db,
		webhookDispatcher: webhookDispatcher,
		sheets:            map[string]*Sheet{},
	}
}

func (s *SheetRepository) SetCell(sheetId string, cellId string, value string) (*contracts.Cell, error) {
	sheetId = strings.ToLower(sheetId)

	pos := contracts.PositionFromString(cellId)
	if pos == contracts.PositionNone {
		return nil, fmt.Errorf("cell_id `%s`: %w", cellId, contracts.InvalidPositionError)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, _, err := s.loadSheet(sheetId)
	if err != nil {
		return nil, err
	}

	if err = sheet.SetCell(pos, value); err != nil {
		return nil, err
	}

	cell := makeCellResponse(sheet, pos)

	err = s.db.Batch(func(tx *bbolt.Tx) error {
		bucket, bucketErr := tx.CreateBucketIfNotExists([]byte(sheetId))
		if bucketErr != nil {
			return bucketErr
		}
		if cell.Value == "" {
			return bucket.Delete([]byte(cell.Key))
		}
		return bucket.Put([]byte(cell.Key), []byte(cell.Value))
	})
	if err != nil {
		return nil, err
	}

	s.sheets[sheetId] = sheet

	if s.webhookDispatcher != nil {
		s.webhookDispatcher.Notify(sheetId, []*contracts.Cell{cell})
	}
	return cell, nil
}

func (s *SheetRepository) GetCell(sheetId string, cellId string) (*contracts.Cell, error) {
	sheetId = strings.ToLower(sheetId)

	pos := contracts.PositionFromString(cellId)
	if pos == contracts.PositionNone {
		return nil, fmt.Errorf("cell_id `%s`: %w", cellId, contracts.InvalidPositionError)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.loadExistingSheet(sheetId)
	if err != nil {
		return nil, err
	}

	if sheet.getCell(pos) == nil {
		return nil, fmt.Errorf("%s: %w", cellId, contracts.CellNotFoundError)
	}
	return makeCellResponse(sheet, pos), nil
}

func (s *SheetRepository) ClearCell(sheetId string, cellId string) error {
	sheetId = strings.ToLower(sheetId)

	pos := contracts.PositionFromString(cellId)
	if pos == contracts.PositionNone {
		return fmt.Errorf("cell_id `%s`: %w", cellId, contracts.InvalidPositionError)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.loadExistingSheet(sheetId)
	if err != nil {
		return err
	}

	if err = sheet.ClearCell(pos); err != nil {
		return err
	}

	err = s.db.Batch(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sheetId))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(pos.String()))
	})
	if err != nil {
		return err
	}

	if s.webhookDispatcher != nil {
		s.webhookDispatcher.Notify(sheetId, []*contracts.Cell{{Key: pos.String()}})
	}
	return nil
}

func (s *SheetRepository) GetCellList(sheetId string) (contracts.CellList, error) {
	sheetId = strings.ToLower(sheetId)

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.loadExistingSheet(sheetId)
	if err != nil {
		return nil, err
	}

	list := contracts.CellList{}
	size := sheet.GetPrintableSize()
	for row := 0; row < size.Rows; row++ {
		for col := 0; col < size.Cols; col++ {
			pos := contracts.Position{Row: row, Col: col}
			cell := sheet.getCell(pos)
			if cell == nil || cell.GetText() == "" {
				continue
			}
			list[pos.String()] = makeCellResponse(sheet, pos)
		}
	}
	return list, nil
}

func (s *SheetRepository) PrintValues(sheetId string) (string, error) {
	return s.print(sheetId, (*Sheet).PrintValues)
}

func (s *SheetRepository) PrintTexts(sheetId string) (string, error) {
	return s.print(sheetId, (*Sheet).PrintTexts)
}

func (s *SheetRepository) print(sheetId string, printSheet func(*Sheet, io.Writer) error) (string, error) {
	sheetId = strings.ToLower(sheetId)

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.loadExistingSheet(sheetId)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err = printSheet(sheet, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// loadSheet returns the cached engine sheet, or rebuilds it from the bbolt
// bucket by replaying the stored cell texts. Persisted data was validated on
// write, so replay order cannot introduce a cycle: forward references are
// materialized as empty cells and filled in when their own text arrives.
// The caller holds s.mu.
func (s *SheetRepository) loadSheet(sheetId string) (*Sheet, bool, error) {
	if sheet, ok := s.sheets[sheetId]; ok {
		return sheet, true, nil
	}

	sheet := NewSheet()
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sheetId))
		if bucket == nil {
			return nil
		}
		found = true
		return bucket.ForEach(func(k, v []byte) error {
			pos := contracts.PositionFromString(string(k))
			if pos == contracts.PositionNone {
				return fmt.Errorf("stored cell key `%s`: %w", k, contracts.InvalidPositionError)
			}
			return sheet.SetCell(pos, string(v))
		})
	})
	if err != nil {
		return nil, false, err
	}
	return sheet, found, nil
}

// loadExistingSheet is loadSheet for read paths: an unknown sheet is an
// error, a known one is cached.
func (s *SheetRepository) loadExistingSheet(sheetId string) (*Sheet, error) {
	sheet, found, err := s.loadSheet(sheetId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", sheetId, contracts.SheetNotFoundError)
	}
	s.sheets[sheetId] = sheet
	return sheet, nil
}

func makeCellResponse(sheet *Sheet, pos contracts.Position) *contracts.Cell {
	response := &contracts.Cell{Key: pos.String()}
	if cell := sheet.getCell(pos); cell != nil {
		response.Value = cell.GetText()
		response.Result = cell.GetValue().String()
	}
	return response
}
