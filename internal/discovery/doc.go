// Package discovery finds players on the local network.
//
// The primary mechanism is SSDP: a Searcher sends an M-SEARCH datagram for
// urn:schemas-upnp-org:device:ZonePlayer:1 to 239.255.255.250:1900 and then
// listens on the same socket for unicast replies until the timeout elapses.
// A reply counts only if it contains the marker "Sonos"; each sender address
// is produced at most once per search.
//
//	search, err := discovery.NewSearcher().Start(2 * time.Second)
//	if err != nil {
//	    return err
//	}
//	defer search.Close()
//	for {
//	    ip, err := search.Next()
//	    if errors.Is(err, discovery.ErrSearchDone) {
//	        break
//	    }
//	    ...
//	}
//
// Players also advertise "_sonos._tcp" over mDNS. Scanner browses for those
// advertisements and is offered as an alternative Locator for networks that
// filter SSDP.
//
// # Network Requirements
//
// - SSDP needs outbound multicast to UDP 1900 and inbound unicast replies
// - mDNS needs UDP port 5353
// - Players must be on the same local network segment
package discovery
