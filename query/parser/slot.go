package parser

// SlotKind classifies a position where the user may type a new name or
// expression.
type SlotKind int

const (
	SlotPath SlotKind = iota
	SlotObjectKey
	SlotArrayElement
	SlotArgument
	SlotMethod
)

var slotKindNames = map[SlotKind]string{
	SlotPath:         "path",
	SlotObjectKey:    "object-key",
	SlotArrayElement: "array-element",
	SlotArgument:     "argument",
	SlotMethod:       "method",
}

func (k SlotKind) String() string {
	if name, ok := slotKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Slot is a completion position recorded by a recovering parse. A cursor
// at any offset in [From, To] belongs to the slot. Current is the text of
// the identifier occupying the slot, empty for placeholders. Node is the
// Property (or ObjectEntry) whose base value supplies the candidates, or
// the MethodCall for SlotMethod.
type Slot struct {
	From    int
	To      int
	Kind    SlotKind
	Current string
	Node    *Node
}

// Contains reports whether offset falls into the slot, both ends inclusive.
func (s Slot) Contains(offset int) bool {
	return s.From <= offset && offset <= s.To
}

// SlotAt returns the first slot in source order containing offset.
func SlotAt(slots []Slot, offset int) (Slot, bool) {
	for _, slot := range slots {
		if slot.Contains(offset) {
			return slot, true
		}
	}
	return Slot{}, false
}
