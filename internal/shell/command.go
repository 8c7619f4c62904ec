package shell

// Command is the closed set of top-level menu operations. Raw menu input is
// parsed into this enum once and dispatched over explicitly, never on the
// raw string.
type Command int

const (
	CommandUnknown Command = iota
	CommandAddUser
	CommandShowUsers
	CommandLogin
	CommandExit
)

func parseCommand(s string) Command {
	switch s {
	case "1":
		return CommandAddUser
	case "2":
		return CommandShowUsers
	case "3":
		return CommandLogin
	case "4":
		return CommandExit
	default:
		return CommandUnknown
	}
}

// DashboardCommand is the closed set of operations inside a session.
type DashboardCommand int

const (
	DashboardUnknown DashboardCommand = iota
	DashboardShowBalance
	DashboardCredit
	DashboardDebit
	DashboardExit
	DashboardStatement
)

func parseDashboardCommand(s string) DashboardCommand {
	switch s {
	case "1":
		return DashboardShowBalance
	case "2":
		return DashboardCredit
	case "3":
		return DashboardDebit
	case "4":
		return DashboardExit
	case "5":
		return DashboardStatement
	default:
		return DashboardUnknown
	}
}
