package directive

// Kind identifies a directive. Built-in directives have their own constant;
// directives registered at runtime share KindCustom and are told apart by name.
type Kind int

const (
	KindCustom Kind = iota
	KindCard
	KindCallout
	KindButton
	KindSteps
	KindCollapsible
	KindChangelog
	KindTabs
)

var kindNames = map[Kind]string{
	KindCustom:      "custom",
	KindCard:        "card",
	KindCallout:     "callout",
	KindButton:      "button",
	KindSteps:       "steps",
	KindCollapsible: "collapsible",
	KindChangelog:   "changelog",
	KindTabs:        "tabs",
}

// String returns the directive name used in `::: name` fences.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf maps a fence name to its built-in Kind. Unknown names map to KindCustom.
func KindOf(name string) Kind {
	for k, n := range kindNames {
		if k != KindCustom && n == name {
			return k
		}
	}
	return KindCustom
}

// Nesting tells a RenderFunc which boundary it is rendering.
type Nesting int

const (
	NestingClose Nesting = -1
	NestingSelf  Nesting = 0
	NestingOpen  Nesting = 1
)
