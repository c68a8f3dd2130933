package battle

// Player is a participant in the battle: the entity the control surface
// (pkg/server) authenticates requests against and the choice-sorting step
// attributes actions to.
type Player struct {
	Ref  PlayerRef
	ID   string
	Name string
	Side SideRef
}
