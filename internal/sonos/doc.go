// Package sonos assembles discovered players into groups and controls them.
//
// Discover finds one player, asks it for the household topology and returns
// one Device per zone group. The returned Device is the group coordinator;
// the other players in the group hang off it as Members. Nothing is cached:
// every call rebuilds the groups from a fresh topology query.
//
//	groups, err := sonos.Discover(2 * time.Second)
//	if err != nil {
//	    return err
//	}
//	kitchen := sonos.FindByName(groups, "Kitchen")
//	if kitchen != nil {
//	    err = kitchen.Pause()
//	}
package sonos
