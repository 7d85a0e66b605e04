package domain

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// ValidRoles is the canonical set of accepted workspace role strings.
var ValidRoles = map[string]bool{
	"owner": true, "admin": true, "editor": true,
	"member": true, "viewer": true,
}

// AllRoles lists every role, for operations any workspace member may perform.
var AllRoles = []Role{RoleOwner, RoleAdmin, RoleEditor, RoleMember, RoleViewer}

type ActivityType string

const (
	ActivityCreated       ActivityType = "created"
	ActivityStatusChanged ActivityType = "status_changed"
	ActivityCompleted     ActivityType = "completed"
	ActivityOverdue       ActivityType = "overdue"
	ActivityDeleted       ActivityType = "deleted"
	ActivityCommented     ActivityType = "commented"
	ActivityAssigned      ActivityType = "assigned"
)

// Ability names the quota-bearing actions checked by the plan gate.
type Ability string

const (
	AbilityInviteMember Ability = "invite_member"
	AbilityCreateBoard  Ability = "create_board"
	AbilityCreateTask   Ability = "create_task"
	AbilityExport       Ability = "export"
	AbilityStartTimer   Ability = "start_timer"
)

// Plan limit keys. A key absent from a plan's limit map means unlimited,
// except LimitActiveTimersPerUser which defaults to 1.
const (
	LimitMaxMembers          = "max_members"
	LimitMaxBoards           = "max_boards"
	LimitMaxTasksPerBoard    = "max_tasks_per_board"
	LimitMaxExportsPerMonth  = "max_exports_per_month"
	LimitActiveTimersPerUser = "max_active_timers_per_user"
)

// DefaultActiveTimersPerUser applies when a plan does not set the key.
const DefaultActiveTimersPerUser = 1

// DefaultPlanKey is the fallback plan for workspaces with no subscription
// and no inline plan.
const DefaultPlanKey = "free"
