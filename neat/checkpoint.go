package neat

import (
	"compress/gzip"
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// checkpointData is the on-disk form of a Checkpoint. Genomes are stored as
// snapshots because Genome holds unexported state and config pointers.
type checkpointData struct {
	Generation int
	Genomes    []GenomeSnapshot
	History    HistorySnapshot
}

// Checkpoint is a restored run: its genomes and the marking history they share.
type Checkpoint struct {
	Generation int
	Genomes    []*Genome
	History    *History
}

// SaveCheckpoint writes the genomes and the marking history to a gzip
// compressed gob file, so a resumed run keeps issuing fresh markings.
// The config is not saved; it is supplied again on load.
func SaveCheckpoint(filePath string, generation int, genomes []*Genome, history *History) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "create checkpoint file '%s'", filePath)
	}
	defer file.Close()

	data := checkpointData{
		Generation: generation,
		Genomes:    make([]GenomeSnapshot, len(genomes)),
		History:    history.Snapshot(),
	}
	for i, g := range genomes {
		data.Genomes[i] = g.Snapshot()
	}

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return errors.Wrap(err, "encode checkpoint")
	}
	if err := gzWriter.Close(); err != nil {
		return errors.Wrap(err, "flush checkpoint")
	}

	logger.Info("checkpoint saved", "path", filePath, "generation", generation, "genomes", len(genomes))
	return file.Close()
}

// LoadCheckpoint reads a file written by SaveCheckpoint and relinks every
// genome to config and to the restored history.
func LoadCheckpoint(filePath string, config *GenomeConfig) (*Checkpoint, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "open checkpoint file '%s'", filePath)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader for checkpoint")
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decode checkpoint")
	}

	cp := &Checkpoint{
		Generation: data.Generation,
		Genomes:    make([]*Genome, 0, len(data.Genomes)),
		History:    RestoreHistory(data.History),
	}
	for _, s := range data.Genomes {
		g, err := FromSnapshot(config, cp.History, s)
		if err != nil {
			return nil, errors.Wrapf(err, "restore genome %s", s.ID)
		}
		cp.Genomes = append(cp.Genomes, g)
	}

	logger.Info("checkpoint loaded", "path", filePath, "generation", cp.Generation, "genomes", len(cp.Genomes))
	return cp, nil
}
