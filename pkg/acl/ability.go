package acl

// Ability is a caller-scoped, request-lifetime expansion of all permission
// rules from all of the caller's roles. It is rebuilt on every request from
// data already loaded for that request and is never persisted or shared.
type Ability struct {
	rules []Rule
	// index keyed by action:subject for O(1) lookups after expansion
	index map[string]struct{}
}

// NewAbility builds an ability from the caller's flattened role rules.
// Duplicates are harmless. A manage/All rule is expanded into one explicit
// manage rule per declared subject, with the original rule retained so a
// direct manage/All check also matches. Expansion is deterministic and
// covers every subject returned by AllSubjects.
func NewAbility(rules []Rule) *Ability {
	a := &Ability{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]struct{}, len(rules)),
	}

	for _, r := range rules {
		if r.Action == ActionManage && r.Subject == SubjectAll {
			for _, subject := range AllSubjects() {
				a.add(Rule{Action: ActionManage, Subject: subject, Condition: r.Condition})
			}
		}
		a.add(r)
	}

	return a
}

func (a *Ability) add(r Rule) {
	key := r.String()
	if _, ok := a.index[key]; ok {
		return
	}
	a.index[key] = struct{}{}
	a.rules = append(a.rules, r)
}

// Can reports whether the ability grants action on subject. A rule matches
// when its action equals the requested action or is manage, and its subject
// equals the requested subject or is All. An ability built from zero rules
// denies everything; that is the default state, not an error.
func (a *Ability) Can(action Action, subject Subject) bool {
	if a == nil {
		return false
	}

	for _, candidate := range []string{
		string(action) + ":" + string(subject),
		string(ActionManage) + ":" + string(subject),
		string(action) + ":" + string(SubjectAll),
		string(ActionManage) + ":" + string(SubjectAll),
	} {
		if _, ok := a.index[candidate]; ok {
			return true
		}
	}
	return false
}

// Cannot is the negation of Can
func (a *Ability) Cannot(action Action, subject Subject) bool {
	return !a.Can(action, subject)
}

// IsPlatformWide reports whether the ability carries the manage/All
// wildcard. Platform-wide callers may list and filter across tenants.
func (a *Ability) IsPlatformWide() bool {
	return a.Can(ActionManage, SubjectAll)
}

// Rules returns the expanded rule set. The slice is owned by the ability
// and must not be mutated.
func (a *Ability) Rules() []Rule {
	if a == nil {
		return nil
	}
	return a.rules
}

// Flatten collects the rules of every given rule set into one slice,
// preserving order. Used to union permissions across a caller's roles.
func Flatten(ruleSets ...[]Rule) []Rule {
	total := 0
	for _, rs := range ruleSets {
		total += len(rs)
	}
	flat := make([]Rule, 0, total)
	for _, rs := range ruleSets {
		flat = append(flat, rs...)
	}
	return flat
}
