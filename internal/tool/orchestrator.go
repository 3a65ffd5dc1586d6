package tool

import (
	"context"
	"fmt"

	"aitool-service/internal/model"
	"aitool-service/internal/provider"
	"aitool-service/internal/usage"
	"aitool-service/prometheus"

	"go.uber.org/zap"
)

// defaultModelHint is the generic model identity handed to the chain; each
// provider maps it to its own vendor model.
const defaultModelHint = "gpt-3.5-turbo"

// AbuseChecker is the pre-check that may suspend the account mid-session
type AbuseChecker interface {
	Check(ctx context.Context, userID uint) (bool, error)
}

// QuotaChecker gates requests against the plan-derived monthly limit
type QuotaChecker interface {
	CheckLimit(ctx context.Context, companyID uint) (*usage.QuotaStatus, error)
}

// Dispatcher produces generations through the provider failover chain
type Dispatcher interface {
	Generate(ctx context.Context, req provider.Request) (*provider.Response, error)
	Stream(ctx context.Context, messages []provider.Message, onChunk func(chunk string) error) (string, string, error)
}

// Orchestrator coordinates one tool invocation: abuse pre-check, quota
// pre-check, provider dispatch, then an unconditional ledger write for the
// outcome. Each step may short-circuit the rest; the pre-check rejections are
// control-flow outcomes and leave no usage fact behind.
type Orchestrator struct {
	abuse     AbuseChecker
	quota     QuotaChecker
	ledger    usage.Ledger
	companies usage.CompanyStore
	chain     Dispatcher
	maxTokens int
	log       *zap.Logger
}

// NewOrchestrator wires the orchestrator with its collaborators
func NewOrchestrator(abuse AbuseChecker, quota QuotaChecker, ledger usage.Ledger, companies usage.CompanyStore, chain Dispatcher, maxTokens int, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		abuse:     abuse,
		quota:     quota,
		ledger:    ledger,
		companies: companies,
		chain:     chain,
		maxTokens: maxTokens,
		log:       log,
	}
}

// Invoke runs the full pipeline for one tool request. The returned error is
// reserved for fatal conditions (unknown company, store failures, a lost
// audit write); expected rejections come back as tagged results.
func (o *Orchestrator) Invoke(ctx context.Context, userID, companyID uint, toolName, prompt string) (*Result, error) {
	suspended, err := o.abuse.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if suspended {
		// Suspension is not a tool-usage fact, so nothing is recorded
		prometheus.RecordSuspension()
		return &Result{
			Outcome: OutcomeSuspended,
			Reason:  "account temporarily suspended due to excessive usage",
		}, nil
	}

	quota, err := o.quota.CheckLimit(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		prometheus.RecordQuotaRejection(quota.Plan)
		return &Result{
			Outcome: OutcomeQuotaExceeded,
			Quota: &QuotaSnapshot{
				Used:  quota.ActualUsage,
				Limit: quota.Limit,
				Plan:  quota.Plan,
			},
			UpgradeOptions: UpgradeOptionsFor(quota.Plan),
		}, nil
	}

	fullPrompt, err := buildPrompt(toolName, prompt)
	if err != nil {
		// Unknown tool: no chain call, but the attempt is still a fact
		if recErr := o.recordFailure(ctx, userID, companyID, toolName, prompt, err); recErr != nil {
			return nil, recErr
		}
		prometheus.RecordToolInvocation(toolName, model.StatusFailure)
		return &Result{Outcome: OutcomeFailure, Err: err, Reason: "invalid tool name"}, nil
	}

	resp, genErr := o.chain.Generate(ctx, provider.Request{
		Tool:      toolName,
		Prompt:    fullPrompt,
		ModelHint: defaultModelHint,
		MaxTokens: o.maxTokens,
	})
	if genErr != nil {
		// An abandoned attempt has no terminal outcome and must not be
		// logged as one
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if recErr := o.recordFailure(ctx, userID, companyID, toolName, prompt, genErr); recErr != nil {
			return nil, recErr
		}
		prometheus.RecordToolInvocation(toolName, model.StatusFailure)
		o.log.Error("Tool request failed",
			zap.String("tool", toolName),
			zap.Uint("user_id", userID),
			zap.Error(genErr))
		return &Result{Outcome: OutcomeFailure, Err: genErr, Reason: "failed to process request"}, nil
	}

	if _, err := o.ledger.Record(ctx, usage.RecordParams{
		UserID:    userID,
		CompanyID: companyID,
		ToolName:  toolName,
		Prompt:    prompt,
		Response:  &resp.Text,
		Status:    model.StatusSuccess,
	}); err != nil {
		// Losing the audit fact is fatal even though generation succeeded
		return nil, fmt.Errorf("usage log write failed: %w", err)
	}

	// Advisory counter only; enforcement recounts from the ledger
	if err := o.companies.IncrementUsage(ctx, companyID); err != nil {
		o.log.Warn("Failed to bump advisory usage counter",
			zap.Uint("company_id", companyID),
			zap.Error(err))
	}

	prometheus.RecordToolInvocation(toolName, model.StatusSuccess)

	result := &Result{
		Outcome:   OutcomeSuccess,
		Output:    resp.Text,
		Provider:  resp.Provider,
		Unlimited: quota.Unlimited,
		Limit:     quota.Limit,
	}
	if !quota.Unlimited {
		// Informational decrement for the response; the source of truth is
		// recounted on the next check
		result.Remaining = quota.Remaining - 1
	}
	return result, nil
}

// StreamChat runs the same pre-checks as Invoke, then relays chat chunks from
// the primary streaming provider through onChunk. Exactly one ledger record
// is written once the stream reaches a terminal outcome; caller cancellation
// mid-stream writes nothing.
func (o *Orchestrator) StreamChat(ctx context.Context, userID, companyID uint, messages []provider.Message, onChunk func(chunk string) error) (*Result, error) {
	suspended, err := o.abuse.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if suspended {
		prometheus.RecordSuspension()
		return &Result{
			Outcome: OutcomeSuspended,
			Reason:  "account temporarily suspended due to excessive usage",
		}, nil
	}

	quota, err := o.quota.CheckLimit(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		prometheus.RecordQuotaRejection(quota.Plan)
		return &Result{
			Outcome: OutcomeQuotaExceeded,
			Quota: &QuotaSnapshot{
				Used:  quota.ActualUsage,
				Limit: quota.Limit,
				Plan:  quota.Plan,
			},
			UpgradeOptions: UpgradeOptionsFor(quota.Plan),
		}, nil
	}

	prompt := lastUserMessage(messages)

	full, providerName, streamErr := o.chain.Stream(ctx, messages, onChunk)
	if streamErr != nil {
		if ctx.Err() != nil {
			// Downstream disconnect propagated upstream; no terminal outcome
			return nil, ctx.Err()
		}
		if recErr := o.recordFailure(ctx, userID, companyID, ToolChatbot, prompt, streamErr); recErr != nil {
			return nil, recErr
		}
		prometheus.RecordToolInvocation(ToolChatbot, model.StatusFailure)
		o.log.Error("Chat stream failed",
			zap.Uint("user_id", userID),
			zap.Error(streamErr))
		return &Result{Outcome: OutcomeFailure, Err: streamErr, Reason: "failed to process chatbot request"}, nil
	}

	if _, err := o.ledger.Record(ctx, usage.RecordParams{
		UserID:    userID,
		CompanyID: companyID,
		ToolName:  ToolChatbot,
		Prompt:    prompt,
		Response:  &full,
		Status:    model.StatusSuccess,
	}); err != nil {
		return nil, fmt.Errorf("usage log write failed: %w", err)
	}

	if err := o.companies.IncrementUsage(ctx, companyID); err != nil {
		o.log.Warn("Failed to bump advisory usage counter",
			zap.Uint("company_id", companyID),
			zap.Error(err))
	}

	prometheus.RecordToolInvocation(ToolChatbot, model.StatusSuccess)

	result := &Result{
		Outcome:   OutcomeSuccess,
		Output:    full,
		Provider:  providerName,
		Unlimited: quota.Unlimited,
		Limit:     quota.Limit,
	}
	if !quota.Unlimited {
		result.Remaining = quota.Remaining - 1
	}
	return result, nil
}

// recordFailure appends the failed attempt. A failed append is surfaced to
// the caller: the audit fact must never be silently dropped.
func (o *Orchestrator) recordFailure(ctx context.Context, userID, companyID uint, toolName, prompt string, cause error) error {
	detail := cause.Error()
	if _, err := o.ledger.Record(ctx, usage.RecordParams{
		UserID:    userID,
		CompanyID: companyID,
		ToolName:  toolName,
		Prompt:    prompt,
		Status:    model.StatusFailure,
		Error:     &detail,
	}); err != nil {
		return fmt.Errorf("usage log write failed: %w", err)
	}
	return nil
}

func lastUserMessage(messages []provider.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
