package browser

import (
	"fmt"
	"strings"
)

// Kind identifies how a Selector is evaluated.
type Kind int

const (
	ByID Kind = iota
	ByQuery
	ByXPath
	ByLabel
)

// Selector locates elements in a page.
type Selector struct {
	Kind   Kind
	Value  string
	Labels []string
}

// ID selects by element id.
func ID(id string) Selector { return Selector{Kind: ByID, Value: id} }

// Query selects by CSS selector.
func Query(css string) Selector { return Selector{Kind: ByQuery, Value: css} }

// XPath selects by XPath expression.
func XPath(expr string) Selector { return Selector{Kind: ByXPath, Value: expr} }

// Labels selects interaction controls: elements whose text equals one of the
// labels or whose aria-label contains one.
func Labels(labels ...string) Selector { return Selector{Kind: ByLabel, Labels: labels} }

func (s Selector) String() string {
	switch s.Kind {
	case ByID:
		return "#" + s.Value
	case ByQuery:
		return s.Value
	case ByXPath:
		return "xpath:" + s.Value
	case ByLabel:
		return "labels:" + strings.Join(s.Labels, "|")
	default:
		return fmt.Sprintf("selector(%d)", s.Kind)
	}
}

// css renders ID and query selectors as CSS.
func (s Selector) css() (string, bool) {
	switch s.Kind {
	case ByID:
		return fmt.Sprintf(`[id=%q]`, s.Value), true
	case ByQuery:
		return s.Value, true
	default:
		return "", false
	}
}

// xpath renders label and XPath selectors as XPath.
func (s Selector) xpath() (string, bool) {
	switch s.Kind {
	case ByXPath:
		return s.Value, true
	case ByLabel:
		if len(s.Labels) == 0 {
			return "", false
		}
		var text, aria []string
		for _, l := range s.Labels {
			text = append(text, fmt.Sprintf("text()[normalize-space(.)=%s]", xpathLiteral(l)))
			aria = append(aria, fmt.Sprintf("contains(@aria-label, %s)", xpathLiteral(l)))
		}
		return "//*[" + strings.Join(append(text, aria...), " or ") + "]", true
	default:
		return "", false
	}
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
