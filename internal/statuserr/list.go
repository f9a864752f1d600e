package statuserr

import (
	"fmt"
	"strings"
)

// List is a list of errors, used to collect every problem found during
// configuration validation instead of stopping at the first one.
type List struct {
	// What describes what kind of errors this list holds.
	What error

	// Children is the detail errors in this list.
	Children []error
}

// Error implements error interface.
func (l List) Error() string {
	ss := make([]string, 0, len(l.Children)+1)
	ss = append(ss, l.What.Error()+":")

	for _, e := range l.Children {
		for _, s := range strings.Split(e.Error(), "\n") {
			ss = append(ss, "  "+s)
		}
	}

	return strings.Join(ss, "\n")
}

// Unwrap implement for errors.Unwrap.
// This function returns the What member.
func (l List) Unwrap() error {
	return l.What
}

func (l List) Is(err error) bool {
	if l.What == err {
		return true
	}
	for _, e := range l.Children {
		if e == err {
			return true
		}
	}
	return false
}

// ListBuilder builds a List.
type ListBuilder struct {
	What     error
	Children []error
}

// Push appends errors as children.
func (lb *ListBuilder) Push(err ...error) {
	lb.Children = append(lb.Children, err...)
}

// Pushf calls fmt.Errorf and then pushes the result as a child.
func (lb *ListBuilder) Pushf(format string, values ...interface{}) {
	lb.Push(fmt.Errorf(format, values...))
}

// Build creates a List if it has any child, otherwise returns nil.
func (lb *ListBuilder) Build() error {
	if len(lb.Children) == 0 {
		return nil
	}

	return List{
		What:     lb.What,
		Children: lb.Children,
	}
}
