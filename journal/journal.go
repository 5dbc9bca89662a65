package journal

import (
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

// Kind tags a journal entry.
type Kind string

const (
	KindOpening  Kind = "opening"
	KindDecision Kind = "decision"
	KindResult   Kind = "result"
	KindEvent    Kind = "event"
)

// Entry is one journal line. Fields not relevant to Kind are omitted.
type Entry struct {
	Kind       Kind             `json:"kind"`
	Player     string           `json:"player"`
	Faction    string           `json:"faction"`
	Difficulty model.Difficulty `json:"difficulty,omitempty"`
	Tick       int              `json:"tick"`
	RuleID     string           `json:"ruleId,omitempty"`
	Action     model.ActionType `json:"action,omitempty"`
	Target     string           `json:"target,omitempty"`
	Count      int              `json:"count,omitempty"`
	Opening    string           `json:"opening,omitempty"`
	OK         *bool            `json:"ok,omitempty"`
	Event      string           `json:"event,omitempty"`
	Detail     string           `json:"detail,omitempty"`
	Ranking    []rules.Ranked   `json:"ranking,omitempty"`
	Snapshot   *model.Snapshot  `json:"snapshot,omitempty"`
}

// Recorder accepts journal entries. A nil Recorder is never passed around;
// use Discard instead.
type Recorder interface {
	Record(e Entry) error
}

// Journal is the file-backed Recorder.
type Journal struct{ w *Writer }

// Open journals into dir with the "decisions" prefix. Files are created
// lazily on the first entry.
func Open(dir string) *Journal {
	return &Journal{w: NewWriter(dir, "decisions")}
}

func (j *Journal) Record(e Entry) error { return j.w.Write(e) }
func (j *Journal) Close() error         { return j.w.Close() }

type discard struct{}

func (discard) Record(Entry) error { return nil }

// Discard drops every entry.
var Discard Recorder = discard{}
