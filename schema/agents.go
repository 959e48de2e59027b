package schema

// Agents is the roster of mock agents, in display order.
var Agents = []AgentName{
	"LYRA",
	"KARA",
	"SOPHIA",
	"CECILIA",
	"DAN",
	"STAN",
	"DUDE",
	"KARL",
	"MISTRESS",
}

// KnownAgent reports whether name is on the roster.
func KnownAgent(name AgentName) bool {
	for _, agent := range Agents {
		if agent == name {
			return true
		}
	}
	return false
}
