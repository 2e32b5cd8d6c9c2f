package models

import "encoding/json"

// ProgressRecord is one completion record, keyed uniquely by ContentID within
// a course+user scope.
type ProgressRecord struct {
	ContentID string `json:"contentId"`
	Completed bool   `json:"completed"`
	Answer    string `json:"answer,omitempty"`
}

// ProgressSnapshot is the most recently fetched, fully-replacing view of
// progress state. Upstream emits either the current object shape
// ({progressRecords, progressPercentage}) or the legacy bare record array;
// HasPercentage records which one arrived so the caller knows whether the
// percentage must be derived from raw records.
type ProgressSnapshot struct {
	Records       []ProgressRecord `json:"progressRecords"`
	Percentage    float64          `json:"progressPercentage"`
	HasPercentage bool             `json:"-"`
}

func (s *ProgressSnapshot) UnmarshalJSON(data []byte) error {
	// Legacy shape: a bare array of records.
	var records []ProgressRecord
	if err := json.Unmarshal(data, &records); err == nil {
		s.Records = records
		s.Percentage = 0
		s.HasPercentage = false
		return nil
	}

	var obj struct {
		Records    []ProgressRecord `json:"progressRecords"`
		Percentage *float64         `json:"progressPercentage"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Records = obj.Records
	if obj.Percentage != nil {
		s.Percentage = *obj.Percentage
		s.HasPercentage = true
	} else {
		s.Percentage = 0
		s.HasPercentage = false
	}
	return nil
}

// Record returns the record for the given content id, if present.
func (s *ProgressSnapshot) Record(contentID string) (ProgressRecord, bool) {
	for _, r := range s.Records {
		if r.ContentID == contentID {
			return r, true
		}
	}
	return ProgressRecord{}, false
}

// CompletedCount counts records flagged completed.
func (s *ProgressSnapshot) CompletedCount() int {
	n := 0
	for _, r := range s.Records {
		if r.Completed {
			n++
		}
	}
	return n
}
