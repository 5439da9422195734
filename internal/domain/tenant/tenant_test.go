package tenant

import (
	"testing"
	"time"
)

func TestLimitsForPlan(t *testing.T) {
	tests := []struct {
		plan Plan
		want PlanLimits
	}{
		{PlanFree, PlanLimits{MaxAgents: 1, RetentionDays: 30}},
		{PlanPro, PlanLimits{MaxAgents: 10, RetentionDays: 365}},
		{Plan("enterprise"), PlanLimits{MaxAgents: 1, RetentionDays: 30}},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			if got := LimitsForPlan(tt.plan); got != tt.want {
				t.Fatalf("LimitsForPlan(%q) = %+v, want %+v", tt.plan, got, tt.want)
			}
		})
	}
}

func TestRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	free := &Tenant{Plan: PlanFree, RetentionDays: 30}
	if got, want := free.RetentionCutoff(now), now.AddDate(0, 0, -30); !got.Equal(want) {
		t.Fatalf("free cutoff = %v, want %v", got, want)
	}

	pro := &Tenant{Plan: PlanPro, RetentionDays: 365}
	if got, want := pro.RetentionCutoff(now), now.AddDate(0, 0, -365); !got.Equal(want) {
		t.Fatalf("pro cutoff = %v, want %v", got, want)
	}

	// Zero retention falls back to the free window instead of deleting everything.
	broken := &Tenant{RetentionDays: 0}
	if got, want := broken.RetentionCutoff(now), now.AddDate(0, 0, -30); !got.Equal(want) {
		t.Fatalf("fallback cutoff = %v, want %v", got, want)
	}
}

func TestEncryptedCredential(t *testing.T) {
	blob := "aa:bb:cc"
	empty := ""
	tn := &Tenant{EncryptedOpenAIKey: &blob, EncryptedAnthropicKey: &empty}

	if got, ok := tn.EncryptedCredential(ProviderOpenAI); !ok || got != blob {
		t.Fatalf("expected stored blob, got %q (ok=%v)", got, ok)
	}
	if _, ok := tn.EncryptedCredential(ProviderAnthropic); ok {
		t.Fatal("empty blob must read as missing")
	}
	if _, ok := (&Tenant{}).EncryptedCredential(ProviderOpenAI); ok {
		t.Fatal("nil blob must read as missing")
	}
}
