package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const sequencesFile = "sequences.yaml"

// sequences maps a record file name to the highest ID issued in it.
type sequences map[string]int64

func (s *CSV) loadSequences() (sequences, error) {
	data, err := os.ReadFile(s.path(sequencesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return sequences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sequencesFile, err)
	}
	seq := sequences{}
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sequencesFile, err)
	}
	if seq == nil {
		seq = sequences{}
	}
	return seq, nil
}

func (s *CSV) saveSequences(seq sequences) error {
	data, err := yaml.Marshal(seq)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", sequencesFile, err)
	}
	tmp, err := os.CreateTemp(s.dir, sequencesFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", sequencesFile, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", sequencesFile, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", sequencesFile, err)
	}
	if err := os.Rename(tmp.Name(), s.path(sequencesFile)); err != nil {
		return fmt.Errorf("replacing %s: %w", sequencesFile, err)
	}
	return nil
}
