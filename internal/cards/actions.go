package cards

// Action is an operation offered by a card's menu. Every action is
// read-only.
type Action int

const (
	CopyHash Action = iota
	ViewReceipt
	DebugTrace
	ViewLogs
	CopyResult
	ViewAsJSON
	DebugCall
)

func (a Action) String() string {
	switch a {
	case CopyHash:
		return "Copy Hash"
	case ViewReceipt:
		return "View Receipt"
	case DebugTrace:
		return "Debug Trace"
	case ViewLogs:
		return "View Logs"
	case CopyResult:
		return "Copy Result"
	case ViewAsJSON:
		return "View as JSON"
	case DebugCall:
		return "Debug Call"
	}
	return "Unknown"
}

var (
	transactionActions = []Action{CopyHash, ViewReceipt, DebugTrace, ViewLogs}
	callActions        = []Action{CopyResult, ViewAsJSON, DebugCall}
)

// ActionsFor returns the menu of a card kind. Log cards have no menu.
func ActionsFor(k Kind) []Action {
	switch k {
	case KindTransaction:
		return append([]Action(nil), transactionActions...)
	case KindCall:
		return append([]Action(nil), callActions...)
	}
	return nil
}

// Interactive reports whether the card has a menu.
func (c *Card) Interactive() bool {
	return len(ActionsFor(c.Kind)) > 0
}
