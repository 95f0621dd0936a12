package launch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// DefaultStorageVersion is written into new level.dat headers.
const DefaultStorageVersion int32 = 10

// levelHeaderSize is the storage version followed by the payload length.
const levelHeaderSize = 8

// LevelData is a decoded level.dat: an 8-byte little-endian header and a
// little-endian NBT root compound.
type LevelData struct {
	StorageVersion int32
	Tags           map[string]any
}

// WorldSettings are the level.dat values rewritten before every launch.
type WorldSettings struct {
	Name          string
	Seed          int64
	GameType      int32
	Generator     int32
	Cheats        bool
	KeepInventory bool
	DaylightCycle bool
	WeatherCycle  bool
	LastPlayed    time.Time
}

// ReadLevelData reads and decodes the level.dat at path.
func ReadLevelData(path string) (*LevelData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ld, err := DecodeLevelData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ld, nil
}

// DecodeLevelData parses level.dat bytes.
func DecodeLevelData(data []byte) (*LevelData, error) {
	if len(data) < levelHeaderSize {
		return nil, errors.New("level.dat header is truncated")
	}
	version := int32(binary.LittleEndian.Uint32(data[0:4]))
	size := binary.LittleEndian.Uint32(data[4:8])
	payload := data[levelHeaderSize:]
	if uint64(size) > uint64(len(payload)) {
		return nil, fmt.Errorf("level.dat declares %d bytes but has %d", size, len(payload))
	}

	tags := map[string]any{}
	if err := nbt.UnmarshalEncoding(payload[:size], &tags, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("level.dat is malformed: %w", err)
	}
	if len(tags) == 0 {
		return nil, errors.New("level.dat has no tags")
	}
	return &LevelData{StorageVersion: version, Tags: tags}, nil
}

// Encode returns the header followed by the NBT payload.
func (ld *LevelData) Encode() ([]byte, error) {
	payload, err := nbt.MarshalEncoding(ld.Tags, nbt.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("encode level.dat: %w", err)
	}
	out := make([]byte, levelHeaderSize, levelHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], uint32(ld.StorageVersion))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(payload)))
	return append(out, payload...), nil
}

// WriteFile encodes ld and writes it to path.
func (ld *LevelData) WriteFile(path string) error {
	data, err := ld.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Apply overwrites the tags controlled by s and keeps everything else.
func (ld *LevelData) Apply(s WorldSettings) {
	if ld.Tags == nil {
		ld.Tags = map[string]any{}
	}
	ld.Tags["LastPlayed"] = s.LastPlayed.Unix()
	ld.Tags["LevelName"] = s.Name
	ld.Tags["RandomSeed"] = s.Seed
	ld.Tags["GameType"] = s.GameType
	ld.Tags["Generator"] = s.Generator
	ld.Tags["cheatsEnabled"] = nbtBool(s.Cheats)
	ld.Tags["keepInventory"] = nbtBool(s.KeepInventory)
	ld.Tags["dodaylightcycle"] = nbtBool(s.DaylightCycle)
	ld.Tags["doweathercycle"] = nbtBool(s.WeatherCycle)
}

// DefaultLevelData is the level.dat used when the world folder has none.
// The game fills in the remaining tags on first load.
func DefaultLevelData() *LevelData {
	return &LevelData{
		StorageVersion: DefaultStorageVersion,
		Tags: map[string]any{
			"LevelName":       "mcdev",
			"GameType":        int32(1),
			"Generator":       int32(1),
			"Difficulty":      int32(2),
			"RandomSeed":      int64(0),
			"LastPlayed":      int64(0),
			"SpawnX":          int32(0),
			"SpawnY":          int32(32767),
			"SpawnZ":          int32(0),
			"commandsEnabled": nbtBool(true),
			"cheatsEnabled":   nbtBool(true),
			"keepInventory":   nbtBool(false),
			"dodaylightcycle": nbtBool(true),
			"doweathercycle":  nbtBool(true),
		},
	}
}

// nbtBool encodes a boolean as TAG_Byte.
func nbtBool(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// writeLevelData creates or rewrites the world's level.dat.
func writeLevelData(path string, s WorldSettings) error {
	ld, err := ReadLevelData(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		ld = DefaultLevelData()
	case err != nil:
		return fmt.Errorf("read level.dat: %w", err)
	}
	ld.Apply(s)
	if err := ld.WriteFile(path); err != nil {
		return fmt.Errorf("write level.dat: %w", err)
	}
	return nil
}
