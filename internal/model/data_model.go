package model

type OpsType byte

const (
	SET OpsType = iota
	GET
	DELETE
	COUNT
	BEGIN
	ROLLBACK
	COMMIT
)

var opNames = [...]string{
	SET:      "SET",
	GET:      "GET",
	DELETE:   "DELETE",
	COUNT:    "COUNT",
	BEGIN:    "BEGIN",
	ROLLBACK: "ROLLBACK",
	COMMIT:   "COMMIT",
}

func (op OpsType) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "UNKNOWN"
}

// Arity is the number of parameters following the command name.
func (op OpsType) Arity() int {
	switch op {
	case SET:
		return 2
	case GET, DELETE, COUNT:
		return 1
	default:
		return 0
	}
}

// LookupOp maps a command name to its operation.
func LookupOp(name string) (OpsType, bool) {
	for i, n := range opNames {
		if n == name {
			return OpsType(i), true
		}
	}
	return 0, false
}

// Command is one parsed line of the text protocol. Key is set for SET,
// GET and DELETE; Value is set for SET and COUNT.
type Command struct {
	Op    OpsType
	Key   string
	Value string
}
