package history

import (
	"fmt"
	"sort"
	"time"

	"ecoroute/pkg/concurrent"

	"github.com/DataDog/zstd"
	"github.com/cockroachdb/pebble"
	"github.com/kelindar/binary"
)

const encodeWorkers = 4

// RouteRecord one computed route, persisted per user.
type RouteRecord struct {
	Username    string
	Source      string
	Destination string
	DistanceKm  float64
	CO2Kg       float64
	CreatedAt   int64
}

// Stats aggregate of a user's saved routes.
type Stats struct {
	Trips           int     `json:"trips"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalCO2Kg      float64 `json:"total_co2_kg"`
}

const keyPrefix = "history/"

// KVDB stores route history in pebble, one zstd-compressed record per key
// "history/<username>/<created-at-nanos>".
type KVDB struct {
	db *pebble.DB
}

func NewKVDB(db *pebble.DB) *KVDB {
	return &KVDB{db}
}

func userPrefix(username string) []byte {
	return []byte(keyPrefix + username + "/")
}

func recordKey(rec RouteRecord) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", keyPrefix, rec.Username, rec.CreatedAt))
}

func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func (k *KVDB) SaveRecord(rec RouteRecord) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}
	val, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return k.db.Set(recordKey(rec), val, pebble.Sync)
}

type compressedRecord struct {
	key   []byte
	value []byte
	err   error
}

// SaveRecords bulk-imports many records in one synced batch. Compression is
// per-record independent, so it runs through the worker pool.
func (k *KVDB) SaveRecords(recs []RouteRecord) error {
	if len(recs) == 0 {
		return nil
	}
	now := time.Now().UnixNano()

	workers := concurrent.NewWorkerPool[concurrent.SaveRecordItem, compressedRecord](encodeWorkers, len(recs))
	for i, rec := range recs {
		if rec.CreatedAt == 0 {
			rec.CreatedAt = now + int64(i)
		}
		encoded, err := binary.Marshal(&rec)
		if err != nil {
			return err
		}
		workers.AddJob(concurrent.SaveRecordItem{Key: recordKey(rec), Value: encoded})
	}
	workers.Close()

	workers.Start(func(job concurrent.SaveRecordItem) compressedRecord {
		compressed, err := zstd.Compress(nil, job.Value)
		return compressedRecord{key: job.Key, value: compressed, err: err}
	})
	workers.Wait()

	batch := k.db.NewBatch()
	for res := range workers.CollectResults() {
		if res.err != nil {
			batch.Close()
			return res.err
		}
		if err := batch.Set(res.key, res.value, nil); err != nil {
			batch.Close()
			return err
		}
	}
	return k.db.Apply(batch, pebble.Sync)
}

func (k *KVDB) scan(prefix []byte) ([]RouteRecord, error) {
	iter, err := k.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	records := []RouteRecord{}
	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

func (k *KVDB) AllRecords() ([]RouteRecord, error) {
	return k.scan([]byte(keyPrefix))
}

func (k *KVDB) UserRecords(username string) ([]RouteRecord, error) {
	return k.scan(userPrefix(username))
}

// DeleteUserRecords removes every record for one user, returning how many
// were deleted.
func (k *KVDB) DeleteUserRecords(username string) (int, error) {
	prefix := userPrefix(username)
	iter, err := k.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return 0, err
	}

	batch := k.db.NewBatch()
	deleted := 0
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		if err := batch.Delete(key, nil); err != nil {
			iter.Close()
			batch.Close()
			return 0, err
		}
		deleted++
	}
	if err := iter.Close(); err != nil {
		batch.Close()
		return 0, err
	}
	if err := k.db.Apply(batch, pebble.Sync); err != nil {
		return 0, err
	}
	return deleted, nil
}

// TopRoutes the longest saved routes, by distance descending.
func (k *KVDB) TopRoutes(limit int) ([]RouteRecord, error) {
	records, err := k.AllRecords()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DistanceKm > records[j].DistanceKm
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (k *KVDB) UserStats(username string) (Stats, error) {
	records, err := k.UserRecords(username)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{}
	for _, rec := range records {
		stats.Trips++
		stats.TotalDistanceKm += rec.DistanceKm
		stats.TotalCO2Kg += rec.CO2Kg
	}
	return stats, nil
}

func (k *KVDB) Close() {
	k.db.Close()
}
