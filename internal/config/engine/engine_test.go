package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/services/fees"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readShippedConfig(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "config", "engine.yaml"))
	require.NoError(t, err)
	return data
}

func TestParse_ShippedConfigMatchesDefault(t *testing.T) {
	cfg, err := Parse(readShippedConfig(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, readShippedConfig(t), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, cfg.Rates.Rush.Threshold)
	assert.Equal(t, int64(3000), cfg.Rates.Distance.Bands[0].FeeMinor)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// removeLine drops the first line containing needle.
func removeLine(data []byte, needle string) []byte {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if strings.Contains(line, needle) {
			return []byte(strings.Join(append(lines[:i:i], lines[i+1:]...), "\n"))
		}
	}
	panic("no line contains " + needle)
}

func TestParse_MissingKeyNamesItsPath(t *testing.T) {
	tests := []struct {
		line  string
		field string
	}{
		{"loan_signing: 12500", ""},
		{"currency: USD", "rates.currency"},
		{"per_mile_beyond_minor: 200", "rates.distance.per_mile_beyond_minor"},
		{"threshold: 4h", "rates.rush.threshold"},
		{"express: 3000", "rates.priority.express"},
		{"holiday_fee_minor: 5000", "rates.time_of_day.holiday_fee_minor"},
		{"per_document_minor: 500", "rates.documents.per_document_minor"},
		{"min_first_pass_rate: 0.97", "tiers.elite.min_first_pass_rate"},
		{"score_floor: 0", "tiers.score_floor"},
		{"allotment: 10", "pilot.allotment"},
		{"failure_penalty: 5", "scoring.failure_penalty"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(removeLine(readShippedConfig(t), tt.line))
			if tt.field == "" {
				// Dropping one signing type is allowed; it just cannot be priced.
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestParse_NullValueIsMissing(t *testing.T) {
	data := strings.Replace(string(readShippedConfig(t)), "heloc: 1000", "heloc:", 1)
	_, err := Parse([]byte(data))
	assert.Equal(t, "rates.loan_bonus.heloc", apperr.FieldOf(err))
}

func TestParse_MissingSections(t *testing.T) {
	_, err := Parse([]byte("rates:\n  currency: USD\n"))
	require.Error(t, err)
	assert.Equal(t, "rates.base", apperr.FieldOf(err))

	_, err = Parse([]byte("{}"))
	assert.Equal(t, "rates", apperr.FieldOf(err))
}

func TestParse_RejectsUnknownKeysAndNames(t *testing.T) {
	data := strings.Replace(string(readShippedConfig(t)), "witness_only: 3500", "apostille: 3500", 1)
	_, err := Parse([]byte(data))
	assert.Equal(t, "rates.base.apostille", apperr.FieldOf(err))

	data = strings.Replace(string(readShippedConfig(t)), "  allotment: 10", "  allotment: 10\n  bonus_credits: 2", 1)
	_, err = Parse([]byte(data))
	assert.Equal(t, "engine_config", apperr.FieldOf(err))
}

func TestParse_SemanticChecksStillRun(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		field string
	}{
		{"bad duration", "threshold: 4h", "threshold: soon", "rates.rush.threshold"},
		{"descending bands", "up_to_miles: 40", "up_to_miles: 20", "rates.distance.bands[1].up_to_miles"},
		{"inverted tiers", "min_score: 90", "min_score: 60", "tiers.elite.min_score"},
		{"zero allotment", "allotment: 10", "allotment: 0", "pilot.allotment"},
		{"score cap under elite", "max_score: 100", "max_score: 80", "scoring.max_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(string(readShippedConfig(t)), tt.from, tt.to, 1)
			_, err := Parse([]byte(data))
			require.Error(t, err)
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestDefault_PricesScenarioTwo(t *testing.T) {
	cfg := Default()
	b, err := fees.ComputeBreakdown(fees.Input{
		SigningType:   fees.SigningLoan,
		Miles:         35,
		Rush:          true,
		LeadTime:      2 * time.Hour,
		SLATier:       fees.SLAPriority,
		ScheduledAt:   time.Date(2025, 6, 11, 23, 0, 0, 0, time.UTC),
		DocumentCount: 8,
		LoanType:      fees.LoanHELOC,
	}, cfg.Rates)
	require.NoError(t, err)
	assert.Equal(t, int64(12500+5000+2500+1500+3500+1500+1000), b.TotalMinorUnits)
	assert.Len(t, b.LineItems, 7)
}
