package vm

import (
	"fmt"
	"io"
	"time"

	"github.com/wudi/tarr/instruction"
	"gopkg.in/yaml.v3"
)

// StatRecord is the persisted shape of one instruction's statistic.
// Run time is stored as whole microseconds since YAML has no native
// duration type and sub-microsecond precision is not interesting once
// aggregated across many data items.
type StatRecord struct {
	Index               int   `yaml:"index"`
	ItemCount           int64 `yaml:"item_count"`
	SuccessCount        int64 `yaml:"success_count"`
	FailureCount        int64 `yaml:"failure_count"`
	RunTimeMicroseconds int64 `yaml:"run_time_microseconds"`
}

// SnapshotStatistics captures p's current statistics as a persistable
// record slice, one entry per instruction, in index order.
func (p *Program) SnapshotStatistics() []StatRecord {
	records := make([]StatRecord, len(p.Statistics))
	for i, s := range p.Statistics {
		records[i] = StatRecord{
			Index:               s.Index,
			ItemCount:           s.ItemCount,
			SuccessCount:        s.SuccessCount,
			FailureCount:        s.FailureCount,
			RunTimeMicroseconds: s.RunTime.Microseconds(),
		}
	}
	return records
}

// MarshalStats writes records as YAML.
func MarshalStats(w io.Writer, records []StatRecord) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(records)
}

// UnmarshalStats reads a YAML record slice previously written by
// MarshalStats.
func UnmarshalStats(r io.Reader) ([]StatRecord, error) {
	var records []StatRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// ValidateStatRecords checks the persisted-format invariants: indices
// run consecutively from zero and no run time is negative.
func ValidateStatRecords(records []StatRecord) error {
	for i, r := range records {
		if r.Index != i {
			return fmt.Errorf("vm: persisted statistics index mismatch: want %d, got %d", i, r.Index)
		}
		if r.RunTimeMicroseconds < 0 {
			return fmt.Errorf("vm: persisted statistics run_time_microseconds must be non-negative, got %d at index %d", r.RunTimeMicroseconds, i)
		}
	}
	return nil
}

// MergeStatistics folds a previously persisted snapshot into p's
// current statistics, instruction by instruction, using the same merge
// law Statistic.Merge guarantees. The snapshot must describe exactly
// the same number of instructions as p.
func (p *Program) MergeStatistics(records []StatRecord) error {
	if err := ValidateStatRecords(records); err != nil {
		return err
	}
	if len(records) != len(p.Statistics) {
		return fmt.Errorf("vm: statistics length mismatch: program has %d instructions, snapshot has %d records", len(p.Statistics), len(records))
	}
	for i, r := range records {
		other := instruction.Statistic{
			Index:        r.Index,
			ItemCount:    r.ItemCount,
			SuccessCount: r.SuccessCount,
			FailureCount: r.FailureCount,
			RunTime:      time.Duration(r.RunTimeMicroseconds) * time.Microsecond,
		}
		if err := p.Statistics[i].Merge(other); err != nil {
			return err
		}
	}
	return nil
}
