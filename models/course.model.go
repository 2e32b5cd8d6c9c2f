package models

import (
	"encoding/json"
)

// Content item types understood by the viewer.
const (
	ContentTypeVideo          = "video"
	ContentTypeMarkdown       = "markdown"
	ContentTypeQuiz           = "quiz"
	ContentTypeMultipleChoice = "multipleChoice"
	ContentTypeDocument       = "document"
)

// Course mirrors the upstream GET /api/courses/{id} payload. A course carries
// either a flat Content list or a Sections list; ordering of both is
// significant and stable for the lifetime of a viewing session.
type Course struct {
	ID         string        `json:"id"`
	MongoID    string        `json:"_id,omitempty"`
	Title      string        `json:"title"`
	Instructor InstructorRef `json:"instructor"`
	Content    []ContentItem `json:"content,omitempty"`
	Sections   []Section     `json:"sections,omitempty"`
}

// Key returns the identifier the course is addressed by.
func (c *Course) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.MongoID
}

// TotalContentCount counts addressable content items across the flat list or
// all sections.
func (c *Course) TotalContentCount() int {
	if len(c.Sections) > 0 {
		n := 0
		for _, s := range c.Sections {
			n += len(s.Content)
		}
		return n
	}
	return len(c.Content)
}

// Section is an ordered grouping of content items within a course.
type Section struct {
	ID      string        `json:"id"`
	MongoID string        `json:"_id,omitempty"`
	Title   string        `json:"title"`
	Content []ContentItem `json:"content"`
}

func (s *Section) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.MongoID
}

// ContentItem is a single viewable unit. Identity is heterogeneous: freshly
// authored items may lack a stable id, older ones carry a Mongo-style _id,
// and the oldest carry nothing at all.
type ContentItem struct {
	ID      FlexID `json:"id,omitempty"`
	MongoID FlexID `json:"_id,omitempty"`
	Title   string `json:"title"`
	Type    string `json:"type"`

	VideoURL string `json:"videoUrl,omitempty"` // video
	Content  string `json:"content,omitempty"`  // markdown, quiz

	Question      string   `json:"question,omitempty"` // multipleChoice
	Options       []string `json:"options,omitempty"`  // exactly 4
	CorrectOption *int     `json:"correctOption,omitempty"`
}

// InstructorRef tolerates both upstream instructor encodings: a plain display
// string or a {id, displayName} reference.
type InstructorRef struct {
	ID          string
	DisplayName string
	Raw         string // set only when the upstream value was a bare string
}

func (ir *InstructorRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		ir.Raw = s
		ir.DisplayName = s
		return nil
	}

	var obj struct {
		ID          FlexID `json:"id"`
		MongoID     FlexID `json:"_id"`
		DisplayName string `json:"displayName"`
		Name        string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	ir.ID = string(obj.ID)
	if ir.ID == "" {
		ir.ID = string(obj.MongoID)
	}
	ir.DisplayName = obj.DisplayName
	if ir.DisplayName == "" {
		ir.DisplayName = obj.Name
	}
	return nil
}

func (ir InstructorRef) MarshalJSON() ([]byte, error) {
	if ir.Raw != "" && ir.ID == "" {
		return json.Marshal(ir.Raw)
	}
	return json.Marshal(struct {
		ID          string `json:"id,omitempty"`
		DisplayName string `json:"displayName,omitempty"`
	}{ir.ID, ir.DisplayName})
}

// FlexID decodes a JSON string or number into its string form, so id
// comparison can be done with plain string equality everywhere.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexID) String() string { return string(f) }
