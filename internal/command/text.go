package command

import "pkt.systems/agentnexus/internal/ansi"

type helpEntry struct {
	name    string
	arg     string
	gap     int
	summary string
}

var helpEntries = []helpEntry{
	{name: "help", gap: 12, summary: "Show this help message."},
	{name: "connect", arg: "<agent>", gap: 3, summary: "Connect to an agent. (e.g., connect LYRA)"},
	{name: "status", gap: 10, summary: "Check system status."},
	{name: "clear", gap: 11, summary: "Clear the terminal screen."},
	{name: "export", arg: "<file>", gap: 4, summary: "Export last run orchestration."},
	{name: "/intersession", gap: 3, summary: "Conceptualize an orchestration taskflow."},
}

func agentTag(name string) string {
	return ansi.Paint(ansi.Agent, "["+name+"]")
}

func delegateLine(branch, agent, task, model string) string {
	return "    " + ansi.Paint(ansi.Meta, branch) + " " + ansi.Paint(ansi.Command, "["+agent+"]") + ": " + task + " " + ansi.Paint(ansi.Meta, "(LLM: "+model+")")
}

var intersessionLines = []string{
	ansi.Paint(ansi.Info, "Conceptualizing intersession for 'Deploy Webapp'..."),
	"  " + agentTag("LYRA") + ": Initiating taskflow.",
	delegateLine("├─>", "SOPHIA", "Analyze requirements for security implications.", "OpenAI for complex logic"),
	delegateLine("├─>", "KARA", "Design scalable architecture.", "Gemini for creative patterns"),
	delegateLine("└─>", "DAN", "Develop core components.", "Abacus for precise implementation"),
	"  " + agentTag("LYRA") + ": " + ansi.Paint(ansi.Success, "Taskflow conceptualized. Awaiting execution command."),
}
