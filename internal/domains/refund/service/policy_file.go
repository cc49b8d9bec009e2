package service

import (
	"fmt"
	"slotkeeper/internal/domains/refund/model"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type policyFile struct {
	Rules []struct {
		HoursBefore int     `toml:"hours_before"`
		FeePercent  float64 `toml:"fee_percent"`
		Reason      string  `toml:"reason"`
	} `toml:"rules"`
}

// LoadPolicyFile reads the deployment default refund policy. Invalid rules are
// skipped with a warning; an empty result means no file policy.
func LoadPolicyFile(path string) ([]model.Rule, error) {
	var file policyFile

	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode refund policy %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warn().Str("path", path).Interface("keys", undecoded).Msg("Ignoring unknown keys in refund policy")
	}

	rules := make([]model.Rule, 0, len(file.Rules))

	for _, raw := range file.Rules {
		rule := model.Rule{
			HoursBefore: raw.HoursBefore,
			FeePercent:  decimal.NewFromFloat(raw.FeePercent),
			Reason:      raw.Reason,
		}

		if !rule.Valid() {
			log.Warn().Str("path", path).Int("hoursBefore", raw.HoursBefore).Float64("feePercent", raw.FeePercent).Msg("Skipping invalid refund rule")

			continue
		}

		rules = append(rules, rule)
	}

	return model.Sorted(rules), nil
}
