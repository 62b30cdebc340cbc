package match

import (
	"testing"

	"github.com/rlafferty/freshtracks/internal/model"
)

func TestScore_Range(t *testing.T) {
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}
	candidates := []model.CandidateFile{
		{Filename: "Foo - Bar.flac", BitRate: 900, Size: 8 << 20},
		{Filename: "Foo - Bar.mp3", BitRate: 320},
		{Filename: "unrelated noise.mp3"},
		{Filename: ""},
		{Filename: `peer\share\Foo Bar (live).ogg`},
	}

	for _, c := range candidates {
		got := Score(c, track)
		if got < 0 || got > 1 {
			t.Errorf("Score(%q) = %v out of [0,1]", c.Filename, got)
		}
	}
}

func TestScore_ExactMatchIsPerfect(t *testing.T) {
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}
	c := model.CandidateFile{Filename: "Foo - Bar.flac", BitRate: 900, Size: 8 << 20}

	if got := Score(c, track); got != 1.0 {
		t.Errorf("Score() = %v, want 1.0", got)
	}
}

func TestScore_HighForGoodMatch(t *testing.T) {
	// The acceptance scenario: one FLAC result at 900 kbps matching both
	// artist and title must score at least 0.9.
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}
	c := model.CandidateFile{Filename: "Foo - Bar.flac", BitRate: 900, Size: 8 << 20}

	if got := Score(c, track); got < 0.9 {
		t.Errorf("Score() = %v, want >= 0.9", got)
	}
}

func TestScore_Ordering(t *testing.T) {
	track := model.WantedTrack{Artist: "Boards of Canada", Title: "Roygbiv"}

	full := model.CandidateFile{Filename: "Boards of Canada - Roygbiv.flac", BitRate: 900}
	partial := model.CandidateFile{Filename: "boards of canada - something else.mp3", BitRate: 320}
	junk := model.CandidateFile{Filename: "random file.mp3", BitRate: 128}

	if Score(full, track) <= Score(partial, track) {
		t.Error("full match should outscore partial match")
	}
	if Score(partial, track) <= Score(junk, track) {
		t.Error("partial match should outscore junk")
	}
}

func TestScore_BitrateTiers(t *testing.T) {
	track := model.WantedTrack{Artist: "Someone", Title: "A Long Enough Name"}
	base := model.CandidateFile{Filename: "Someone - partial.mp3"}

	at192 := base
	at192.BitRate = 192
	at320 := base
	at320.BitRate = 320

	if Score(at320, track) <= Score(at192, track) {
		t.Error("320 kbps should outscore 192 kbps for the same filename")
	}
}

func TestRank_StableDescending(t *testing.T) {
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}
	candidates := []model.CandidateFile{
		{Filename: "nothing relevant.mp3", Username: "a"},
		{Filename: "Foo - Bar.flac", BitRate: 900, Username: "b"},
		{Filename: "Foo - Bar.flac", BitRate: 900, Username: "c"},
	}

	ranked := Rank(candidates, track)
	if ranked[0].Candidate.Username != "b" {
		t.Errorf("first ranked candidate from %q, want %q (ties break first-seen)", ranked[0].Candidate.Username, "b")
	}
	if ranked[1].Candidate.Username != "c" {
		t.Errorf("second ranked candidate from %q, want %q", ranked[1].Candidate.Username, "c")
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Error("ranking not descending")
		}
	}
}

func TestFilter_Acceptable(t *testing.T) {
	f := NewFilter(0, 0)

	tests := []struct {
		name string
		c    model.CandidateFile
		want bool
	}{
		{"good flac", model.CandidateFile{Filename: "a.flac", BitRate: 900, Size: 20 << 20}, true},
		{"unknown bitrate and size", model.CandidateFile{Filename: "a.mp3"}, true},
		{"low bitrate", model.CandidateFile{Filename: "a.mp3", BitRate: 96}, false},
		{"tiny file", model.CandidateFile{Filename: "a.mp3", Size: 100 << 10}, false},
		{"not audio", model.CandidateFile{Filename: "a.zip", BitRate: 320, Size: 5 << 20}, false},
		{"at the floors", model.CandidateFile{Filename: "a.mp3", BitRate: 128, Size: 1 << 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Acceptable(tt.c); got != tt.want {
				t.Errorf("Acceptable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBest_TwoTierThreshold(t *testing.T) {
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}
	f := NewFilter(0, 0)
	th := DefaultThresholds()

	t.Run("primary tier wins", func(t *testing.T) {
		candidates := []model.CandidateFile{
			{Filename: "Foo - Bar.flac", BitRate: 900, Size: 9 << 20},
			{Filename: "barely bar.mp3", BitRate: 192, Size: 5 << 20},
		}
		best, ok := Best(candidates, track, f, th)
		if !ok {
			t.Fatal("expected a candidate")
		}
		if best.Candidate.Filename != "Foo - Bar.flac" {
			t.Errorf("picked %q", best.Candidate.Filename)
		}
	})

	t.Run("fallback tier catches weak match", func(t *testing.T) {
		wordy := model.WantedTrack{Artist: "Foo", Title: "Bar Baz Qux Quux"}
		candidates := []model.CandidateFile{
			// Artist matches, title does not: 0.4 + one of five words.
			{Filename: "Foo something.ogg", Size: 5 << 20},
		}
		best, ok := Best(candidates, wordy, f, th)
		if !ok {
			t.Fatal("expected fallback candidate")
		}
		if best.Score >= th.Primary {
			t.Errorf("score %v should be below primary %v for this test to exercise the fallback", best.Score, th.Primary)
		}
		if best.Score < th.Fallback {
			t.Errorf("score %v should be at least fallback %v", best.Score, th.Fallback)
		}
	})

	t.Run("nothing acceptable", func(t *testing.T) {
		candidates := []model.CandidateFile{
			{Filename: "unrelated.txt"},
			{Filename: "garbage.mp3", BitRate: 64},
		}
		if _, ok := Best(candidates, track, f, th); ok {
			t.Error("expected no candidate")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, ok := Best(nil, track, f, th); ok {
			t.Error("expected no candidate for empty input")
		}
	})
}
