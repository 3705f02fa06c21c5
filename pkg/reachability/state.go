// Package reachability tracks network reachability state and broadcasts
// deduplicated change events. The last known state lives in the Monitor
// instance handed to whoever needs it; there is no process-wide singleton.
package reachability

// State is one observed reachability snapshot.
type State struct {
	// Reachable is true when the network is reachable at all.
	Reachable bool `json:"reachable"`

	// Cellular is true when reachability goes through a cellular link.
	Cellular bool `json:"cellular"`

	// WiFi is true when reachability goes through a Wi-Fi link.
	WiFi bool `json:"wifi"`
}

// Offline is the fully unreachable state.
var Offline = State{}

// Equal reports whether two snapshots are identical. Repeated identical
// states are deduplicated before broadcasting.
func (s State) Equal(other State) bool {
	return s == other
}
