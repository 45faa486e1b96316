package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/onnwee/view-ratio/testutil"
	"github.com/onnwee/view-ratio/twitchapi"
)

type fakeSource struct {
	games      map[string]string
	totals     map[string]twitchapi.StreamTotals
	streamErrs map[string]error
	calls      []string
}

func (f *fakeSource) GetGame(_ context.Context, name string) (twitchapi.Game, error) {
	f.calls = append(f.calls, "game:"+name)
	id, ok := f.games[name]
	if !ok {
		return twitchapi.Game{}, fmt.Errorf("%q: %w", name, twitchapi.ErrGameNotFound)
	}
	return twitchapi.Game{ID: id, Name: name}, nil
}

func (f *fakeSource) GetStreamTotals(_ context.Context, gameID string) (twitchapi.StreamTotals, error) {
	f.calls = append(f.calls, "streams:"+gameID)
	if err := f.streamErrs[gameID]; err != nil {
		return twitchapi.StreamTotals{}, err
	}
	return f.totals[gameID], nil
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 5, 1, 13, 0, 0, 0, time.Local)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		viewers, channels int
		want              float64
	}{
		{300, 10, 30},
		{1, 3, 1.0 / 3.0},
		{0, 5, 0},
		{500, 0, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		got := Ratio(tt.viewers, tt.channels)
		if got != tt.want {
			t.Errorf("Ratio(%d, %d) = %v, want %v", tt.viewers, tt.channels, got, tt.want)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("Ratio(%d, %d) not finite: %v", tt.viewers, tt.channels, got)
		}
	}
}

func TestCollect(t *testing.T) {
	src := &fakeSource{
		games: map[string]string{"GameA": "1", "GameC": "3", "GameD": "4"},
		totals: map[string]twitchapi.StreamTotals{
			"1": {Viewers: 300, Channels: 10},
			"4": {Viewers: 0, Channels: 0},
		},
		streamErrs: map[string]error{"3": errors.New("connection reset")},
	}
	r := &Reporter{Source: src, Now: fixedClock()}

	got := r.Collect(context.Background(), []string{"GameA", "GameB", "GameC", "GameD"})

	base := time.Date(2024, 5, 1, 13, 0, 0, 0, time.Local)
	want := Table{
		{Game: "GameA", Viewers: 300, Channels: 10, Ratio: 30, Timestamp: base.Add(1 * time.Second)},
		{Game: "GameC", Viewers: 0, Channels: 0, Ratio: 0, Timestamp: base.Add(2 * time.Second), StreamsFailed: true},
		{Game: "GameD", Viewers: 0, Channels: 0, Ratio: 0, Timestamp: base.Add(3 * time.Second)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}

	// Unresolved titles never reach the streams endpoint.
	wantCalls := []string{"game:GameA", "streams:1", "game:GameB", "game:GameC", "streams:3", "game:GameD", "streams:4"}
	if diff := cmp.Diff(wantCalls, src.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectEmpty(t *testing.T) {
	r := &Reporter{Source: &fakeSource{}}
	got := r.Collect(context.Background(), nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Collect(nil) = %#v, want empty non-nil table", got)
	}
}

func TestCollectAllUnresolved(t *testing.T) {
	r := &Reporter{Source: &fakeSource{}}
	got := r.Collect(context.Background(), []string{"X", "Y", "Z"})
	if len(got) != 0 {
		t.Errorf("Collect() returned %d rows, want 0", len(got))
	}
}

func TestCollectCancelled(t *testing.T) {
	src := &fakeSource{games: map[string]string{"GameA": "1"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := (&Reporter{Source: src}).Collect(ctx, []string{"GameA"})
	if len(got) != 0 {
		t.Errorf("Collect() on cancelled ctx returned %d rows", len(got))
	}
	if len(src.calls) != 0 {
		t.Errorf("source called after cancellation: %v", src.calls)
	}
}

func TestCollectDefaultClock(t *testing.T) {
	src := &fakeSource{
		games:  map[string]string{"GameA": "1"},
		totals: map[string]twitchapi.StreamTotals{"1": {Viewers: 1, Channels: 1}},
	}
	before := time.Now()
	got := (&Reporter{Source: src}).Collect(context.Background(), []string{"GameA"})
	if len(got) != 1 {
		t.Fatalf("Collect() returned %d rows, want 1", len(got))
	}
	if got[0].Timestamp.Before(before) || time.Since(got[0].Timestamp) > time.Minute {
		t.Errorf("unexpected timestamp %v", got[0].Timestamp)
	}
}

// Runs the reporter against the real Helix client and a fake Twitch.
func TestCollectAgainstHelix(t *testing.T) {
	srv := testutil.NewMockTwitchServer(t)
	srv.MockGamesResponse(map[string]string{"GameA": "1", "Broken": "9"})
	srv.MockStreamsResponse(map[string][]int{
		"1": {100, 120, 80, 0, 0, 0, 0, 0, 0, 0},
		"9": nil,
	})

	client := &twitchapi.HelixClient{BaseURL: srv.HelixBase(), ClientID: "cid", Token: "tok"}
	r := &Reporter{Source: client, Now: fixedClock()}

	got := r.Collect(context.Background(), []string{"GameA", "GameB", "Broken"})
	if len(got) != 2 {
		t.Fatalf("Collect() returned %d rows, want 2: %+v", len(got), got)
	}
	if a := got[0]; a.Game != "GameA" || a.Viewers != 300 || a.Channels != 10 || a.Ratio != 30 {
		t.Errorf("GameA row = %+v, want 300/10/30", a)
	}
	if b := got[1]; b.Game != "Broken" || b.Viewers != 0 || b.Channels != 0 || b.Ratio != 0 || !b.StreamsFailed {
		t.Errorf("Broken row = %+v, want zero-filled", b)
	}
}
