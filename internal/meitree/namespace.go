package meitree

import "encoding/xml"

type nsScope struct {
	prefixes   map[string]string
	defaultNS  string
	defaultSet bool
}

type nsStack struct {
	scopes []nsScope
}

func (s *nsStack) push(scope nsScope) {
	s.scopes = append(s.scopes, scope)
}

func (s *nsStack) pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *nsStack) lookup(prefix string) (string, bool) {
	switch prefix {
	case "xml":
		return XMLNamespace, true
	case "xmlns":
		return XMLNSNamespace, true
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		scope := s.scopes[i]
		if prefix == "" {
			if scope.defaultSet {
				return scope.defaultNS, true
			}
			continue
		}
		if ns, ok := scope.prefixes[prefix]; ok {
			return ns, true
		}
	}
	if prefix == "" {
		return "", true
	}
	return "", false
}

func collectNamespaceScope(attrs []xml.Attr) nsScope {
	scope := nsScope{}
	for _, a := range attrs {
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope.defaultNS = a.Value
			scope.defaultSet = true
		case a.Name.Space == "xmlns":
			if a.Name.Local == "xml" || a.Name.Local == "xmlns" {
				continue
			}
			if scope.prefixes == nil {
				scope.prefixes = make(map[string]string, 1)
			}
			scope.prefixes[a.Name.Local] = a.Value
		}
	}
	return scope
}

// resolveAttr maps a raw attribute name to its namespace. Un-prefixed
// attributes are in no namespace.
func (s *nsStack) resolveAttr(name xml.Name) (string, bool) {
	if name.Space == "" {
		if name.Local == "xmlns" {
			return XMLNSNamespace, true
		}
		return "", true
	}
	return s.lookup(name.Space)
}
