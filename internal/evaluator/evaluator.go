package evaluator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sql-eval/internal/domain"
	"sql-eval/internal/duckdbsql"
	"sql-eval/internal/metrics"
	"sql-eval/internal/sqlcanon"
)

// Evaluator computes the structural distance and lexical similarity of a
// generated query and its reference.
type Evaluator struct {
	frontend Frontend
	policy   domain.ParsePolicy
	logger   *slog.Logger
}

// New creates an Evaluator. A nil logger discards log output.
func New(frontend Frontend, policy domain.ParsePolicy, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if policy == "" {
		policy = domain.ParsePolicyStrict
	}
	return &Evaluator{frontend: frontend, policy: policy, logger: logger}
}

// Policy returns the parse-failure policy in effect.
func (e *Evaluator) Policy() domain.ParsePolicy {
	return e.policy
}

// Scored is an evaluation result together with how it was obtained.
type Scored struct {
	domain.EvaluationResult
	// Miss is set when the generated query was scored as a complete miss
	// without being compared: it was empty or blank, or it failed to parse under
	// ParsePolicyScoreAsMiss.
	Miss bool
}

// EvaluatePair scores gen against ref.
//
// The questions of both records must be equal. An empty generated query is
// a complete miss (distance 1, cosine 0) and is never parsed; a query of
// only whitespace counts as empty. Otherwise both
// queries are canonicalized, the distance is computed on their trees and the
// cosine on their canonical SQL.
func (e *Evaluator) EvaluatePair(gen domain.GeneratedRecord, ref domain.ReferenceRecord) (domain.EvaluationResult, error) {
	scored, err := e.Score(gen, ref)
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	return scored.EvaluationResult, nil
}

// Score is EvaluatePair that also reports whether the pair was a miss.
func (e *Evaluator) Score(gen domain.GeneratedRecord, ref domain.ReferenceRecord) (Scored, error) {
	if gen.Question != ref.Question {
		return Scored{}, &domain.QuestionMismatchError{Index: -1, Generated: gen.Question, Reference: ref.Question}
	}

	result := domain.EvaluationResult{
		Question:       gen.Question,
		GeneratedQuery: gen.GeneratedQuery,
		ReferenceQuery: ref.Query,
	}
	miss := Scored{EvaluationResult: result, Miss: true}
	miss.ASTDistance = 1
	miss.TokenCosine = 0

	if strings.TrimSpace(gen.GeneratedQuery) == "" {
		return miss, nil
	}

	genCanon, genErr := e.frontend.Canonicalize(gen.GeneratedQuery)
	refCanon, refErr := e.frontend.Canonicalize(ref.Query)
	if refErr != nil {
		return Scored{}, parseError(domain.SideReference, refErr)
	}
	if genErr != nil {
		perr := parseError(domain.SideGenerated, genErr)
		if e.policy == domain.ParsePolicyScoreAsMiss && isParseError(genErr) {
			e.logger.Debug("generated query scored as miss", "question", gen.Question, "error", perr)
			return miss, nil
		}
		return Scored{}, perr
	}

	genTokens, err := e.frontend.Tokenize(genCanon.SQL)
	if err != nil {
		return Scored{}, parseError(domain.SideGenerated, err)
	}
	refTokens, err := e.frontend.Tokenize(refCanon.SQL)
	if err != nil {
		return Scored{}, parseError(domain.SideReference, err)
	}

	result.ASTDistance = metrics.ASTDistance(e.frontend.Tree(genCanon), e.frontend.Tree(refCanon))
	result.TokenCosine = metrics.TokenCosine(metrics.TokenCounts(genTokens), metrics.TokenCounts(refTokens))
	return Scored{EvaluationResult: result}, nil
}

// Canonicalize exposes the front-end's canonical form of sql, with parse
// failures reported as *domain.ParseError.
func (e *Evaluator) Canonicalize(side domain.Side, sql string) (*sqlcanon.Canonical, error) {
	c, err := e.frontend.Canonicalize(sql)
	if err != nil {
		return nil, parseError(side, err)
	}
	return c, nil
}

func isParseError(err error) bool {
	var perr *duckdbsql.ParseError
	return errors.As(err, &perr)
}

// parseError wraps a front-end failure into a domain.ParseError. Errors
// that are not parse errors are wrapped with their side only.
func parseError(side domain.Side, err error) error {
	var perr *duckdbsql.ParseError
	if errors.As(err, &perr) {
		return &domain.ParseError{Side: side, Pos: perr.Pos, Message: perr.Message, Err: err}
	}
	return fmt.Errorf("%s query: %w", side, err)
}
