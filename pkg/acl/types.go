package acl

import "encoding/json"

// Action represents a verb that can be performed on a subject
type Action string

const (
	ActionManage Action = "manage" // wildcard action, implies every other action
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// Subject represents a resource type permissions are declared against
type Subject string

const (
	SubjectAll          Subject = "All" // wildcard subject, matches every subject
	SubjectUser         Subject = "User"
	SubjectRole         Subject = "Role"
	SubjectCompany      Subject = "Company"
	SubjectBranch       Subject = "Branch"
	SubjectItemType     Subject = "ItemType"
	SubjectCatalog      Subject = "Catalog"
	SubjectCustomer     Subject = "Customer"
	SubjectPawnTicket   Subject = "PawnTicket"
	SubjectCapitalTopup Subject = "CapitalTopup"
	SubjectCashDeposit  Subject = "CashDeposit"
	SubjectCashMutation Subject = "CashMutation"
	SubjectStockOpname  Subject = "StockOpname"
	SubjectAuctionBatch Subject = "AuctionBatch"
	SubjectReport       Subject = "Report"
)

// AllActions returns every declared action. Adding an action to the system
// means adding it here and nowhere else.
func AllActions() []Action {
	return []Action{
		ActionManage,
		ActionCreate,
		ActionRead,
		ActionUpdate,
		ActionDelete,
		ActionView,
	}
}

// AllSubjects returns every declared subject, excluding the wildcard.
// Wildcard rule expansion iterates this list, so a new resource type only
// needs a new constant and an entry here.
func AllSubjects() []Subject {
	return []Subject{
		SubjectUser,
		SubjectRole,
		SubjectCompany,
		SubjectBranch,
		SubjectItemType,
		SubjectCatalog,
		SubjectCustomer,
		SubjectPawnTicket,
		SubjectCapitalTopup,
		SubjectCashDeposit,
		SubjectCashMutation,
		SubjectStockOpname,
		SubjectAuctionBatch,
		SubjectReport,
	}
}

// ValidAction reports whether a belongs to the closed action enumeration
func ValidAction(a Action) bool {
	for _, known := range AllActions() {
		if a == known {
			return true
		}
	}
	return false
}

// ValidSubject reports whether s belongs to the closed subject enumeration
func ValidSubject(s Subject) bool {
	if s == SubjectAll {
		return true
	}
	for _, known := range AllSubjects() {
		if s == known {
			return true
		}
	}
	return false
}

// Rule is a single permission rule as stored on a role. Condition is an
// opaque payload carried for forward compatibility; ability matching does
// not evaluate it. Row-level scoping is handled by the tenant filter layer.
type Rule struct {
	Action    Action          `json:"action"`
	Subject   Subject         `json:"subject"`
	Condition json.RawMessage `json:"condition,omitempty"`
}

// String returns a string representation of the rule
func (r Rule) String() string {
	return string(r.Action) + ":" + string(r.Subject)
}

// Requirement is one action/subject pair an operation demands from its
// caller. Operations declare an ordered list of these at registration time.
type Requirement struct {
	Action  Action  `json:"action"`
	Subject Subject `json:"subject"`
}

// String returns a string representation of the requirement
func (r Requirement) String() string {
	return string(r.Action) + ":" + string(r.Subject)
}
