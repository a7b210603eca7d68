package storage

import (
	"encoding/json"
	"errors"

	"evolvekit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRunConfig(cfg model.RunConfig) ([]byte, error) {
	return json.Marshal(cfg)
}

func DecodeRunConfig(data []byte) (model.RunConfig, error) {
	var cfg model.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.RunConfig{}, err
	}
	if err := checkVersion(cfg.VersionedRecord); err != nil {
		return model.RunConfig{}, err
	}
	return cfg, nil
}

// EncodeGeneration serializes a snapshot. Gene values go through
// encoding/json, so numeric genes decode as float64.
func EncodeGeneration(snapshot model.GenerationSnapshot) ([]byte, error) {
	return json.Marshal(snapshot)
}

func DecodeGeneration(data []byte) (model.GenerationSnapshot, error) {
	var snapshot model.GenerationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.GenerationSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.GenerationSnapshot{}, err
	}
	return snapshot, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}
