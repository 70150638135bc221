package calculation

// KeyKind groups keypad keys by role.
type KeyKind string

// Key kinds.
const (
	KindDigit    KeyKind = "digit"
	KindOperator KeyKind = "operator"
	KindControl  KeyKind = "control"
)

// Control key symbols.
const (
	SymbolClear    = "C"
	SymbolEvaluate = "="
)

// Key is one keypad button.
type Key struct {
	Symbol string  `json:"symbol"`
	Label  string  `json:"label"`
	Kind   KeyKind `json:"kind"`
}

// Event returns the state event a press of k produces.
func (k Key) Event() Event {
	switch k.Symbol {
	case SymbolClear:
		return Cleared{}
	case SymbolEvaluate:
		return EvaluateRequested{}
	default:
		return KeyPressed{Symbol: k.Symbol}
	}
}

// Keypad lists the keys in row order.
var Keypad = []Key{
	{Symbol: SymbolClear, Label: "Clear", Kind: KindControl},
	{Symbol: "/", Label: "Divide", Kind: KindOperator},
	{Symbol: "*", Label: "Multiply", Kind: KindOperator},

	digitKey("7"), digitKey("8"), digitKey("9"),
	{Symbol: "-", Label: "Subtract", Kind: KindOperator},

	digitKey("4"), digitKey("5"), digitKey("6"),
	{Symbol: "+", Label: "Add", Kind: KindOperator},

	digitKey("1"), digitKey("2"), digitKey("3"),
	{Symbol: SymbolEvaluate, Label: "Equals", Kind: KindControl},

	digitKey("0"),
	digitKey("."),
}

var keysBySymbol = func() map[string]Key {
	m := make(map[string]Key, len(Keypad))
	for _, k := range Keypad {
		m[k.Symbol] = k
	}
	return m
}()

// LookupKey returns the keypad key for symbol.
func LookupKey(symbol string) (Key, bool) {
	k, ok := keysBySymbol[symbol]
	return k, ok
}

func digitKey(symbol string) Key {
	return Key{Symbol: symbol, Label: "button " + symbol, Kind: KindDigit}
}
