package eval

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher decides the `~=` operator.
type Matcher interface {
	Match(left, right any) bool
}

type MatcherFunc func(left, right any) bool

func (f MatcherFunc) Match(left, right any) bool {
	return f(left, right)
}

// RegexpMatcher treats the right operand as a regular expression and
// matches it against the left operand, or against any string element when
// the left operand is a list. Non-string patterns and invalid expressions
// never match. Compiled patterns are cached.
type RegexpMatcher struct {
	cache sync.Map // pattern -> *regexp.Regexp, nil when invalid
}

func NewRegexpMatcher() *RegexpMatcher {
	return &RegexpMatcher{}
}

func (m *RegexpMatcher) Match(left, right any) bool {
	pattern, ok := right.(string)
	if !ok {
		return false
	}
	re := m.compile(pattern)
	if re == nil {
		return false
	}
	switch l := left.(type) {
	case string:
		return re.MatchString(l)
	case []any:
		for _, item := range l {
			if s, ok := item.(string); ok && re.MatchString(s) {
				return true
			}
		}
	}
	return false
}

func (m *RegexpMatcher) compile(pattern string) *regexp.Regexp {
	if cached, ok := m.cache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	m.cache.Store(pattern, re)
	return re
}

// SubstringMatcher matches when the right operand string occurs in the
// left string.
var SubstringMatcher = MatcherFunc(func(left, right any) bool {
	l, lok := left.(string)
	r, rok := right.(string)
	return lok && rok && strings.Contains(l, r)
})
