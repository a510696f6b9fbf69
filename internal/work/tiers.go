package work

// defaultTiers maps known pattern names to their default complexity tier.
// Unrecognized patterns default to the middle tier; high and critical risk
// escalates one tier regardless of the default.
var defaultTiers = map[string]Tier{
	"todo-comment":        TierSimple,
	"magic-number":        TierSimple,
	"unused-import":       TierSimple,
	"naming-convention":   TierSimple,
	"deprecated-api":      TierModerate,
	"missing-error-check": TierModerate,
	"broad-exception":     TierModerate,
	"mutable-global":      TierModerate,
	"sql-injection":       TierComplex,
	"unsafe-eval":         TierComplex,
	"race-condition":      TierComplex,
	"circular-dependency": TierComplex,
}

// tierFor applies the tier table and both escalation rules.
func tierFor(f Finding) Tier {
	tier, ok := defaultTiers[f.Pattern]
	if !ok {
		tier = TierModerate
	}
	if f.Risk == RiskHigh || f.Risk == RiskCritical {
		tier = escalate(tier)
	}
	return tier
}

// verificationKinds maps patterns to the external check that proves a fix.
// Behavioral patterns want the test suite; everything else re-lints.
var verificationKinds = map[string]string{
	"sql-injection":       "tests",
	"unsafe-eval":         "tests",
	"race-condition":      "tests",
	"missing-error-check": "tests",
}

func verificationFor(f Finding) Verification {
	kind, ok := verificationKinds[f.Pattern]
	if !ok {
		kind = "lint"
	}
	return Verification{Kind: kind, Rule: f.Pattern, Target: f.File}
}
