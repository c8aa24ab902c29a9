package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "leansync-jira/internal/common"
	. "leansync-jira/internal/interfaces"
	"leansync-jira/internal/models"

	bolt "go.etcd.io/bbolt"
)

const (
	mappingBucket = "mapping"
	roundsBucket  = "rounds"
	currentKey    = "current"
	previousKey   = "previous"
	updatedKey    = "updated"
)

type storage struct {
	db     *bolt.DB
	config *StorageConfig
}

func NewStorage(config *StorageConfig) (Storage, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, NewStorageError("STORAGE_DIR", "failed to create database directory").WithCause(err)
	}

	if config.BackupDir != "" {
		if err := os.MkdirAll(config.BackupDir, 0755); err != nil {
			return nil, NewStorageError("STORAGE_DIR", "failed to create backup directory").WithCause(err)
		}
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, NewStorageError("STORAGE_OPEN", "failed to open database").
			WithContext("path", config.DatabasePath).WithCause(err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(mappingBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(roundsBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, NewStorageError("STORAGE_BUCKETS", "failed to create buckets").WithCause(err)
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMappingDocument stores data as the current document, keeping the
// replaced one as the previous revision
func (s *storage) SaveMappingDocument(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(mappingBucket))

		if existing := bucket.Get([]byte(currentKey)); existing != nil {
			prev := make([]byte, len(existing))
			copy(prev, existing)
			if err := bucket.Put([]byte(previousKey), prev); err != nil {
				return fmt.Errorf("failed to keep previous mapping document: %w", err)
			}
		}

		if err := bucket.Put([]byte(currentKey), data); err != nil {
			return fmt.Errorf("failed to save mapping document: %w", err)
		}

		now, _ := time.Now().MarshalBinary()
		return bucket.Put([]byte(updatedKey), now)
	})
}

func (s *storage) LoadMappingDocument() ([]byte, error) {
	return s.loadMapping(currentKey)
}

func (s *storage) LoadPreviousMappingDocument() ([]byte, error) {
	return s.loadMapping(previousKey)
}

func (s *storage) loadMapping(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(mappingBucket)).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	return data, err
}

// SaveRound appends a round record to the issue's history and trims the
// history to the configured length
func (s *storage) SaveRound(record *models.RoundRecord) error {
	if record == nil || record.IssueKey == "" {
		return NewStorageError("ROUND_KEY", "round record requires an issue key")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal round %s: %w", record.ID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(roundsBucket))
		key := []byte(fmt.Sprintf("%s%020d:%s", roundPrefix(record.IssueKey), record.Started.UnixNano(), record.ID))
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save round %s: %w", record.ID, err)
		}
		return s.trimRounds(bucket, record.IssueKey)
	})
}

func (s *storage) trimRounds(bucket *bolt.Bucket, issueKey string) error {
	limit := s.config.HistoryPerIssue
	if limit <= 0 {
		return nil
	}

	prefix := []byte(roundPrefix(issueKey))
	var keys [][]byte
	c := bucket.Cursor()
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}

	for i := 0; i < len(keys)-limit; i++ {
		if err := bucket.Delete(keys[i]); err != nil {
			return err
		}
	}
	return nil
}

// LoadRounds returns the issue's rounds, oldest first
func (s *storage) LoadRounds(issueKey string) ([]*models.RoundRecord, error) {
	var rounds []*models.RoundRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(roundsBucket))
		prefix := []byte(roundPrefix(issueKey))

		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var round models.RoundRecord
			if err := json.Unmarshal(v, &round); err != nil {
				continue
			}
			rounds = append(rounds, &round)
		}

		return nil
	})

	return rounds, err
}

func (s *storage) ClearRounds(issueKey string) (int, error) {
	count := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(roundsBucket))
		prefix := []byte(roundPrefix(issueKey))

		var keys [][]byte
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			count++
		}
		return nil
	})

	return count, err
}

func roundPrefix(issueKey string) string {
	return issueKey + ":"
}

func hasPrefix(k, prefix []byte) bool {
	return len(k) >= len(prefix) && string(k[:len(prefix)]) == string(prefix)
}
