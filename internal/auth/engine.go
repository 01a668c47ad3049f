package auth

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"caprun/internal/domain"
)

// AuditEntry records one authorization decision.
type AuditEntry struct {
	Action       string // capability_invoke | capability_denied
	CapabilityID string
	Principal    string
	Result       string // allowed | denied
	Details      string
}

// AuditLogger is the interface for writing audit entries.
type AuditLogger interface {
	LogAudit(ctx context.Context, entry AuditEntry) error
}

// Config holds the allow/deny patterns matched against capability ids.
type Config struct {
	Allow         []string `json:"allow,omitempty"`
	Deny          []string `json:"deny,omitempty"`
	DefaultPolicy string   `json:"defaultPolicy"` // allow | deny
}

// Engine implements domain.Authorizer with deny/allow pattern matching over
// capability ids. Deny wins over allow; unmatched ids fall back to the
// default policy.
type Engine struct {
	cfg    Config
	audit  AuditLogger
	logger *slog.Logger

	allowRe []*regexp.Regexp
	denyRe  []*regexp.Regexp
}

func NewEngine(cfg Config, audit AuditLogger, logger *slog.Logger) (*Engine, error) {
	e := &Engine{cfg: cfg, audit: audit, logger: logger}

	var err error
	e.denyRe, err = compilePatterns(cfg.Deny)
	if err != nil {
		return nil, fmt.Errorf("invalid deny pattern: %w", err)
	}
	e.allowRe, err = compilePatterns(cfg.Allow)
	if err != nil {
		return nil, fmt.Errorf("invalid allow pattern: %w", err)
	}
	return e, nil
}

func (e *Engine) Authorize(ctx context.Context, p *domain.Principal, capabilityID string) error {
	if p == nil {
		return domain.Unauthorizedf("no principal")
	}
	if p.System {
		return nil
	}

	for _, re := range e.denyRe {
		if re.MatchString(capabilityID) {
			e.logger.Warn("capability invocation DENIED",
				"capability", capabilityID,
				"principal", p.ID,
				"pattern", re.String(),
			)
			e.logAction(ctx, "capability_denied", capabilityID, p, "denied", "deny match: "+re.String())
			return domain.Unauthorizedf("principal %s may not invoke %s", p.ID, capabilityID)
		}
	}

	for _, re := range e.allowRe {
		if re.MatchString(capabilityID) {
			e.logAction(ctx, "capability_invoke", capabilityID, p, "allowed", "allow match: "+re.String())
			return nil
		}
	}

	if e.cfg.DefaultPolicy == "deny" {
		e.logAction(ctx, "capability_denied", capabilityID, p, "denied", "default policy: deny")
		return domain.Unauthorizedf("principal %s may not invoke %s", p.ID, capabilityID)
	}
	e.logAction(ctx, "capability_invoke", capabilityID, p, "allowed", "default policy: allow")
	return nil
}

func (e *Engine) logAction(ctx context.Context, action, capabilityID string, p *domain.Principal, result, details string) {
	if e.audit == nil {
		return
	}
	err := e.audit.LogAudit(ctx, AuditEntry{
		Action:       action,
		CapabilityID: capabilityID,
		Principal:    p.ID,
		Result:       result,
		Details:      details,
	})
	if err != nil {
		e.logger.Warn("audit log write failed", "error", err)
	}
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
