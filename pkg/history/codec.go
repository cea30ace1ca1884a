package history

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

func encodeRecord(rec RouteRecord) ([]byte, error) {
	encoded, err := binary.Marshal(&rec)
	if err != nil {
		return nil, err
	}
	return zstd.Compress(nil, encoded)
}

func decodeRecord(bb []byte) (RouteRecord, error) {
	decompressed, err := zstd.Decompress(nil, bb)
	if err != nil {
		return RouteRecord{}, err
	}
	var rec RouteRecord
	if err := binary.Unmarshal(decompressed, &rec); err != nil {
		return RouteRecord{}, err
	}
	return rec, nil
}
