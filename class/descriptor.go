package class

import (
	"fmt"
	"strings"

	"github.com/hornet-go/hornet/value"
)

// ParseFieldDescriptor converts a single JVM field descriptor ("I", "J",
// "[I", "Ljava/lang/Object;", ...) into the value.Type this core tracks.
// Long/double both map to value.TLong/value.TDouble; reference and array
// descriptors both map to value.TRef, since the core does not distinguish
// object refs from array refs at the Value level (§3).
func ParseFieldDescriptor(desc string) (value.Type, error) {
	if desc == "" {
		return 0, fmt.Errorf("class: empty field descriptor")
	}
	switch desc[0] {
	case 'B', 'C', 'S', 'Z', 'I':
		return value.TInt, nil
	case 'J':
		return value.TLong, nil
	case 'F':
		return value.TFloat, nil
	case 'D':
		return value.TDouble, nil
	case 'L', '[':
		return value.TRef, nil
	default:
		return 0, fmt.Errorf("class: malformed field descriptor %q", desc)
	}
}

// MethodDescriptor is the parsed form of a "(ArgTypes)ReturnType" descriptor.
type MethodDescriptor struct {
	Raw        string
	ArgTypes   []value.Type
	ReturnType value.Type
	IsVoid     bool
}

// ParseMethodDescriptor parses a JVM method descriptor into arg/return
// types. It does not validate class names referenced by L...; or [
// descriptors — that is the class loader's job, out of scope here (§1).
func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, fmt.Errorf("class: malformed method descriptor %q", desc)
	}
	close := strings.IndexByte(desc, ')')
	if close < 0 {
		return nil, fmt.Errorf("class: malformed method descriptor %q", desc)
	}
	argsPart := desc[1:close]
	retPart := desc[close+1:]

	md := &MethodDescriptor{Raw: desc}

	i := 0
	for i < len(argsPart) {
		start := i
		for argsPart[i] == '[' {
			i++
		}
		if argsPart[i] == 'L' {
			end := strings.IndexByte(argsPart[i:], ';')
			if end < 0 {
				return nil, fmt.Errorf("class: malformed method descriptor %q", desc)
			}
			i += end + 1
		} else {
			i++
		}
		t, err := ParseFieldDescriptor(argsPart[start:i])
		if err != nil {
			return nil, err
		}
		md.ArgTypes = append(md.ArgTypes, t)
	}

	if retPart == "V" {
		md.IsVoid = true
		return md, nil
	}
	t, err := ParseFieldDescriptor(retPart)
	if err != nil {
		return nil, err
	}
	md.ReturnType = t
	return md, nil
}
