package classify

import (
	"context"

	"github.com/thep200/a11y-miner/pkg/log"
)

// Classifier gates repositories before tool detection.
type Classifier struct {
	Logger  log.Logger
	Library []Rule
	WebApp  []Rule
}

func NewClassifier(logger log.Logger) *Classifier {
	return &Classifier{
		Logger:  logger,
		Library: LibraryRules(),
		WebApp:  WebAppRules(),
	}
}

func (c *Classifier) IsLibrary(ctx context.Context, in *Input) (bool, error) {
	return c.decide(ctx, "library", c.Library, in)
}

// IsWebApplication should only be asked after IsLibrary returned false.
func (c *Classifier) IsWebApplication(ctx context.Context, in *Input) (bool, error) {
	return c.decide(ctx, "web application", c.WebApp, in)
}

func (c *Classifier) decide(ctx context.Context, question string, rules []Rule, in *Input) (bool, error) {
	v, rule, err := Evaluate(ctx, rules, in)
	if err != nil {
		return false, err
	}
	c.Logger.Debug(ctx, "%s: %s? %s (rule %s)", in.Repo.FullName, question, v, rule)
	return v == Yes, nil
}
