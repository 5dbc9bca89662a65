package journal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nstehr/vimy/vimy-macro/model"
)

func TestIndexRuleStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}

	yes, no := true, false
	entries := []Entry{
		{Kind: KindDecision, Faction: "vanguard", Player: "p1", Tick: 10, RuleID: "supply", Action: model.ActionBuild},
		{Kind: KindResult, Faction: "vanguard", Player: "p1", Tick: 11, RuleID: "supply", OK: &yes},
		{Kind: KindDecision, Faction: "vanguard", Player: "p1", Tick: 30, RuleID: "supply", Action: model.ActionBuild},
		{Kind: KindResult, Faction: "vanguard", Player: "p1", Tick: 31, RuleID: "supply", OK: &no},
		{Kind: KindDecision, Faction: "vanguard", Player: "p1", Tick: 40, RuleID: "army", Action: model.ActionTrain},
		{Kind: KindDecision, Faction: "swarm", Player: "p2", Tick: 40, RuleID: "army", Action: model.ActionTrain},
		{Kind: KindEvent, Faction: "vanguard", Player: "p1", Tick: 40, Event: "under_attack"},
	}
	for _, e := range entries {
		if err := idx.Record(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen to query what was flushed on Close.
	idx, err = OpenIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	stats, err := idx.RuleStats(context.Background(), "vanguard")
	if err != nil {
		t.Fatalf("RuleStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %+v, want 2 rules", stats)
	}
	want := RuleStat{RuleID: "supply", Decisions: 2, Succeeded: 1, Failed: 1}
	if stats[0] != want {
		t.Errorf("stats[0] = %+v, want %+v", stats[0], want)
	}
	if stats[1].RuleID != "army" || stats[1].Decisions != 1 {
		t.Errorf("stats[1] = %+v", stats[1])
	}
}

func TestIndexRecordAfterClose(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	if err := idx.Record(Entry{Kind: KindDecision}); err != nil {
		t.Errorf("Record after Close = %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestIndexRecordRacingClose(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for n := 0; n < 200; n++ {
				_ = idx.Record(Entry{Kind: KindDecision, Faction: "vanguard", Tick: n, RuleID: "supply"})
			}
		}()
	}
	close(start)
	if err := idx.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	wg.Wait()
}

type failing struct{ n int }

func (f *failing) Record(Entry) error {
	f.n++
	return errors.New("disk full")
}

func TestTee(t *testing.T) {
	a, b := &failing{}, &failing{}
	if err := Tee(a, Discard, b).Record(Entry{Kind: KindDecision}); err == nil {
		t.Error("Tee should surface the first error")
	}
	if a.n != 1 || b.n != 1 {
		t.Errorf("recorders called %d/%d times, want 1/1", a.n, b.n)
	}
}
