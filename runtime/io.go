package runtime

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

// ioFunctions returns core spec §6's I/O builtins: read_line, print,
// println. Unlike the teacher's registry.BuiltinCallContext (which
// threads VM services through every builtin call to avoid an import
// cycle), these close directly over the stdin/stdout Bootstrap was given:
// this domain's builtins need nothing else from the running VM, so a
// per-call context interface would be ceremony without a consumer.
func ioFunctions(stdin io.Reader, stdout io.Writer) []registry.Builtin {
	reader := bufio.NewReader(stdin)
	return []registry.Builtin{
		{Name: "read_line", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("read_line", args, 0); err != nil {
				return nil, err
			}
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				if err == io.EOF {
					return values.NewString(""), nil
				}
				return nil, err
			}
			return values.NewString(strings.TrimRight(line, "\r\n")), nil
		}},
		{Name: "print", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("print", args, 1); err != nil {
				return nil, err
			}
			fmt.Fprint(stdout, args[0].String())
			return values.Unit(), nil
		}},
		{Name: "println", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("println", args, 1); err != nil {
				return nil, err
			}
			fmt.Fprintln(stdout, args[0].String())
			return values.Unit(), nil
		}},
	}
}
