package domain

// ActorKind is a closed variant over the identities that can invoke
// privileged operations. An account with an active staff profile acts
// as a staff member even when its tier is ADMIN; the plain Admin kind
// is reserved for privileged accounts without a profile.
type ActorKind string

const (
	ActorAdmin      ActorKind = "ADMIN"
	ActorStaff      ActorKind = "STAFF"
	ActorWholesaler ActorKind = "WHOLESALER"
	ActorConsumer   ActorKind = "CONSUMER"
)

// Actor is the resolved identity used by the permission predicate.
// Staff is non-nil iff Kind is ActorStaff.
type Actor struct {
	Kind  ActorKind
	User  *User
	Staff *StaffUser
}
