package domain

// Rule binds an operation to a cron spec for the scheduler.
type Rule struct {
	Name      string
	Operation Operation
	CronSpec  string
	Modifiers []string
}

// Request builds the dispatcher request fired by the rule.
func (r Rule) Request() Request {
	return Request{
		Operation: r.Operation,
		Modifiers: append([]string(nil), r.Modifiers...),
	}
}
