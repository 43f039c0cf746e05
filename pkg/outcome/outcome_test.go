package outcome

import "testing"

func TestFromBool(t *testing.T) {
	tests := []struct {
		name    string
		allowed bool
		decided bool
		want    Outcome
	}{
		{"true → granted", true, true, Granted},
		{"false → rejected", false, true, Rejected},
		{"undecided → neutral", false, false, Neutral},
		{"undecided allowed flag ignored", true, false, Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromBool(tt.allowed, tt.decided); got != tt.want {
				t.Errorf("FromBool(%v, %v) = %q, want %q", tt.allowed, tt.decided, got, tt.want)
			}
		})
	}
}

func TestCombineOr(t *testing.T) {
	tests := []struct {
		a, b, want Outcome
	}{
		{Neutral, Neutral, Neutral},
		{Neutral, Granted, Granted},
		{Granted, Neutral, Granted},
		{Rejected, Granted, Granted},
		{Granted, Rejected, Granted},
		{Rejected, Neutral, Rejected},
		{Blocked, Granted, Blocked},
		{Granted, Blocked, Blocked},
		{Blocked, Rejected, Blocked},
	}

	for _, tt := range tests {
		if got := CombineOr(tt.a, tt.b); got != tt.want {
			t.Errorf("CombineOr(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCombineMerge(t *testing.T) {
	tests := []struct {
		a, b, want Outcome
	}{
		{Neutral, Neutral, Neutral},
		{Granted, Neutral, Granted},
		{Granted, Rejected, Rejected},
		{Rejected, Granted, Rejected},
		{Blocked, Rejected, Blocked},
		{Rejected, Blocked, Blocked},
		{Neutral, Blocked, Blocked},
	}

	for _, tt := range tests {
		if got := CombineMerge(tt.a, tt.b); got != tt.want {
			t.Errorf("CombineMerge(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDenies(t *testing.T) {
	if Neutral.Denies() || Granted.Denies() {
		t.Error("neutral/granted must not count as denials")
	}
	if !Rejected.Denies() || !Blocked.Denies() {
		t.Error("rejected/blocked must count as denials")
	}
}

func TestValid(t *testing.T) {
	for _, o := range []Outcome{Neutral, Granted, Rejected, Blocked} {
		if !o.Valid() {
			t.Errorf("%q should be valid", o)
		}
	}
	if Outcome("maybe").Valid() {
		t.Error(`"maybe" should not be valid`)
	}
}
