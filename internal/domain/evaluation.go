package domain

import (
	"fmt"
	"time"
)

// GeneratedRecord is one model output: a question and the SQL produced for
// it. GeneratedQuery may be empty.
type GeneratedRecord struct {
	Question       string `json:"question"`
	GeneratedQuery string `json:"generated_query"`
}

// ReferenceRecord is one gold example: a question and its reference SQL.
type ReferenceRecord struct {
	Question string `json:"question"`
	Query    string `json:"query"`
}

// EvaluationResult holds the similarity metrics of one pair.
type EvaluationResult struct {
	Question       string  `json:"question"`
	GeneratedQuery string  `json:"generated_query"`
	ReferenceQuery string  `json:"reference_query"`
	ASTDistance    float64 `json:"ast_distance"`
	TokenCosine    float64 `json:"token_cosine"`
}

// AggregateMetrics are the means of the per-pair metrics over a batch.
type AggregateMetrics struct {
	ASTDistanceMean float64 `json:"ast_distance_mean"`
	TokenCosineMean float64 `json:"token_cosine_mean"`
}

// Side identifies which query of a pair an error refers to.
type Side string

// Sides of an evaluation pair.
const (
	SideGenerated Side = "generated"
	SideReference Side = "reference"
)

// ParsePolicy decides how a generated query that fails to parse is scored.
type ParsePolicy string

// Parse policies.
const (
	// ParsePolicyStrict propagates the parse error and aborts the batch.
	ParsePolicyStrict ParsePolicy = "strict"
	// ParsePolicyScoreAsMiss scores an unparseable generated query like an
	// empty one. Reference parse errors always propagate.
	ParsePolicyScoreAsMiss ParsePolicy = "score-generated-as-miss"
)

// ParseParsePolicy validates a policy name. The empty string selects the
// strict policy.
func ParseParsePolicy(s string) (ParsePolicy, error) {
	switch ParsePolicy(s) {
	case "", ParsePolicyStrict:
		return ParsePolicyStrict, nil
	case ParsePolicyScoreAsMiss:
		return ParsePolicyScoreAsMiss, nil
	}
	return "", ErrValidation("unknown parse policy %q (want %q or %q)", s, ParsePolicyStrict, ParsePolicyScoreAsMiss)
}

// BatchOutcome is the result of evaluating a batch of pairs.
type BatchOutcome struct {
	Results   []EvaluationResult
	Aggregate AggregateMetrics
	// Truncated is the number of records dropped because the two inputs had
	// different lengths.
	Truncated int
	// Misses counts generated queries scored as misses under
	// ParsePolicyScoreAsMiss.
	Misses   int
	Duration time.Duration
}

// Run is an evaluation run recorded in the ledger.
type Run struct {
	ID              string
	CreatedAt       time.Time
	GeneratedPath   string
	ReferencePath   string
	Pairs           int
	Truncated       int
	ASTDistanceMean float64
	TokenCosineMean float64
	ParsePolicy     ParsePolicy
}

// RunItem is one pair of a recorded run.
type RunItem struct {
	Position    int
	Question    string
	ASTDistance float64
	TokenCosine float64
}

// String renders a one-line summary of the run.
func (r Run) String() string {
	return fmt.Sprintf("%s pairs=%d ast_distance_mean=%.4f token_cosine_mean=%.4f", r.ID, r.Pairs, r.ASTDistanceMean, r.TokenCosineMean)
}
